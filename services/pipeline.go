package services

import (
	"sync"

	"nomify/models"
)

// RiskAnalyzer is the analysis collaborator the pipeline drives.
// *GeminiService satisfies it.
type RiskAnalyzer interface {
	GetAnalysis(foodItem string, profile models.AllergenProfile) (*models.RiskVerdict, error)
}

// AnalysisPipeline owns the single active request lifecycle for one
// user session and exposes a finite result state to observers:
//
//	Idle → InFlight → {Succeeded | Failed} → InFlight → …
//
// At most one resolver+analysis chain is in flight at a time; a second
// submission is refused until the outstanding one resolves. There is no
// cancel-in-flight: an outstanding call runs to completion before the
// next submission is possible.
type AnalysisPipeline struct {
	mu        sync.Mutex
	state     models.PipelineState
	last      models.FoodIdentityRequest
	analyzer  RiskAnalyzer
	observers []func(models.PipelineState)
}

func NewAnalysisPipeline(analyzer RiskAnalyzer) *AnalysisPipeline {
	return &AnalysisPipeline{
		state:    models.IdleState(),
		analyzer: analyzer,
	}
}

// State returns the current pipeline state.
func (p *AnalysisPipeline) State() models.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastIdentity returns the most recently resolved food identity, the
// one the current terminal state speaks about. Zero value until the
// first resolver success.
func (p *AnalysisPipeline) LastIdentity() models.FoodIdentityRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Subscribe registers an observer called on every state transition.
// Observers must not call back into the pipeline.
func (p *AnalysisPipeline) Subscribe(fn func(models.PipelineState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

func (p *AnalysisPipeline) transition(next models.PipelineState) {
	p.mu.Lock()
	p.state = next
	obs := make([]func(models.PipelineState), len(p.observers))
	copy(obs, p.observers)
	p.mu.Unlock()

	for _, fn := range obs {
		fn(next)
	}
}

// Submit runs a pre-resolved identity through the analysis chain. It is
// accepted only when no chain is outstanding; every accepted submission
// transitions through InFlight before producing a fresh terminal state.
func (p *AnalysisPipeline) Submit(req models.FoodIdentityRequest, profile models.AllergenProfile) (models.PipelineState, error) {
	return p.Run(InFlightLabel(req.Modality), func() (models.FoodIdentityRequest, error) {
		return req, nil
	}, profile)
}

// Run drives one full resolver+analysis chain: it enters InFlight, lets
// the resolver produce a canonical identity, submits it to the analysis
// collaborator, and lands on Succeeded or Failed. A resolver failure
// becomes Failed without the analysis collaborator ever being invoked.
// Returns ErrAnalysisInFlight, leaving the state untouched, when a
// chain is already outstanding.
func (p *AnalysisPipeline) Run(label string, resolve func() (models.FoodIdentityRequest, error), profile models.AllergenProfile) (models.PipelineState, error) {
	p.mu.Lock()
	if p.state.Phase == models.PhaseInFlight {
		st := p.state
		p.mu.Unlock()
		return st, ErrAnalysisInFlight
	}
	p.state = models.InFlightState(label)
	st := p.state
	obs := make([]func(models.PipelineState), len(p.observers))
	copy(obs, p.observers)
	p.mu.Unlock()
	for _, fn := range obs {
		fn(st)
	}

	req, err := resolve()
	if err != nil {
		failed := models.FailedState(FailureReasonFor(ErrNoFoodRecognized))
		p.transition(failed)
		return failed, nil
	}
	p.mu.Lock()
	p.last = req
	p.mu.Unlock()

	verdict, err := p.analyzer.GetAnalysis(req.FoodItem, profile)
	if err != nil {
		failed := models.FailedState(FailureReasonFor(err))
		p.transition(failed)
		return failed, nil
	}

	succeeded := models.SucceededState(*verdict)
	p.transition(succeeded)
	return succeeded, nil
}
