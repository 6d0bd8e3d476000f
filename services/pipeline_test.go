package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"nomify/models"
)

type stubAnalyzer struct {
	mu       sync.Mutex
	calls    int
	lastFood string
	verdict  models.RiskVerdict
	err      error
	release  chan struct{} // when non-nil, GetAnalysis blocks until closed
}

func (s *stubAnalyzer) GetAnalysis(foodItem string, profile models.AllergenProfile) (*models.RiskVerdict, error) {
	s.mu.Lock()
	s.calls++
	s.lastFood = foodItem
	release := s.release
	s.mu.Unlock()

	if release != nil {
		<-release
	}
	if s.err != nil {
		return nil, s.err
	}
	v := s.verdict
	return &v, nil
}

func (s *stubAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stateRecorder struct {
	mu     sync.Mutex
	states []models.PipelineState
}

func (r *stateRecorder) record(st models.PipelineState) {
	r.mu.Lock()
	r.states = append(r.states, st)
	r.mu.Unlock()
}

func (r *stateRecorder) phases() []models.PipelinePhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PipelinePhase, len(r.states))
	for i, st := range r.states {
		out[i] = st.Phase
	}
	return out
}

func waitForPhase(t *testing.T, p *AnalysisPipeline, phase models.PipelinePhase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.State().Phase == phase {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("pipeline never reached phase %s (now %s)", phase, p.State().Phase)
}

func textRequest(food string) models.FoodIdentityRequest {
	return models.FoodIdentityRequest{FoodItem: food, Modality: models.ModalityText}
}

func TestPipelineStartsIdle(t *testing.T) {
	p := NewAnalysisPipeline(&stubAnalyzer{})
	if got := p.State().Phase; got != models.PhaseIdle {
		t.Fatalf("initial phase = %s, want idle", got)
	}
}

func TestSubmitTransitionsThroughInFlight(t *testing.T) {
	analyzer := &stubAnalyzer{verdict: models.RiskVerdict{
		Recommendation: "Avoid this.",
		RiskByAllergen: map[string]int{"Dairy": 80},
		OverallRisk:    80,
		Alternatives:   []models.Alternative{},
	}}
	p := NewAnalysisPipeline(analyzer)

	rec := &stateRecorder{}
	p.Subscribe(rec.record)

	final, err := p.Submit(textRequest("Kit Kat"), models.NewAllergenProfile())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	phases := rec.phases()
	if len(phases) != 2 || phases[0] != models.PhaseInFlight || phases[1] != models.PhaseSucceeded {
		t.Fatalf("observed phases %v, want [in_flight succeeded]", phases)
	}
	rec.mu.Lock()
	label := rec.states[0].Label
	rec.mu.Unlock()
	if label != "Nomifying your food!" {
		t.Fatalf("in-flight label = %q", label)
	}
	if final.Verdict == nil || final.Verdict.OverallRisk != 80 {
		t.Fatalf("final state missing verdict: %+v", final)
	}
	if analyzer.lastFood != "Kit Kat" {
		t.Fatalf("analyzer got food %q", analyzer.lastFood)
	}
}

func TestSubmitFailureBecomesFailedState(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"service unavailable", ErrServiceUnavailable, "service_unavailable"},
		{"unidentifiable food", ErrUnidentifiableFood, "unidentifiable_food"},
		{"malformed response", ErrMalformedResponse, "malformed_response"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewAnalysisPipeline(&stubAnalyzer{err: tc.err})
			final, err := p.Submit(textRequest("bread"), models.NewAllergenProfile())
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if final.Phase != models.PhaseFailed {
				t.Fatalf("phase = %s, want failed", final.Phase)
			}
			if final.Reason == nil || final.Reason.Code != tc.wantCode {
				t.Fatalf("reason = %+v, want code %s", final.Reason, tc.wantCode)
			}
			if final.Verdict != nil {
				t.Fatal("failed state must not carry a partial verdict")
			}
		})
	}
}

func TestResolverFailureSkipsAnalyzer(t *testing.T) {
	analyzer := &stubAnalyzer{}
	p := NewAnalysisPipeline(analyzer)

	final, err := p.Run(InFlightLabel(models.ModalityBarcode), func() (models.FoodIdentityRequest, error) {
		return models.FoodIdentityRequest{}, ErrNoFoodRecognized
	}, models.NewAllergenProfile())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if final.Phase != models.PhaseFailed {
		t.Fatalf("phase = %s, want failed", final.Phase)
	}
	if final.Reason.Code != "no_food_recognized" {
		t.Fatalf("reason code = %s, want no_food_recognized", final.Reason.Code)
	}
	if analyzer.callCount() != 0 {
		t.Fatalf("analyzer called %d times, want 0", analyzer.callCount())
	}
}

func TestSingleFlight(t *testing.T) {
	release := make(chan struct{})
	analyzer := &stubAnalyzer{
		verdict: models.RiskVerdict{Recommendation: "ok", OverallRisk: 0},
		release: release,
	}
	p := NewAnalysisPipeline(analyzer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Submit(textRequest("first"), models.NewAllergenProfile())
	}()

	waitForPhase(t, p, models.PhaseInFlight)

	st, err := p.Submit(textRequest("second"), models.NewAllergenProfile())
	if !errors.Is(err, ErrAnalysisInFlight) {
		t.Fatalf("second submit err = %v, want ErrAnalysisInFlight", err)
	}
	if st.Phase != models.PhaseInFlight {
		t.Fatalf("state while in flight = %s, want in_flight", st.Phase)
	}

	close(release)
	<-done

	if got := p.State().Phase; got != models.PhaseSucceeded {
		t.Fatalf("final phase = %s, want succeeded", got)
	}
	if analyzer.callCount() != 1 {
		t.Fatalf("analyzer called %d times, want 1 (second submit must no-op)", analyzer.callCount())
	}
	if analyzer.lastFood != "first" {
		t.Fatalf("analyzer food = %q, want the first submission", analyzer.lastFood)
	}
}

func TestResubmitReplacesVerdictWholesale(t *testing.T) {
	analyzer := &stubAnalyzer{verdict: models.RiskVerdict{Recommendation: "first", OverallRisk: 10}}
	p := NewAnalysisPipeline(analyzer)

	rec := &stateRecorder{}
	p.Subscribe(rec.record)

	if _, err := p.Submit(textRequest("apple"), models.NewAllergenProfile()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	analyzer.mu.Lock()
	analyzer.verdict = models.RiskVerdict{Recommendation: "second", OverallRisk: 20}
	analyzer.mu.Unlock()

	final, err := p.Submit(textRequest("pear"), models.NewAllergenProfile())
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	phases := rec.phases()
	want := []models.PipelinePhase{models.PhaseInFlight, models.PhaseSucceeded, models.PhaseInFlight, models.PhaseSucceeded}
	if len(phases) != len(want) {
		t.Fatalf("observed %d transitions %v, want %v", len(phases), phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, phases[i], want[i])
		}
	}
	if final.Verdict.Recommendation != "second" || final.Verdict.OverallRisk != 20 {
		t.Fatalf("verdict not replaced: %+v", final.Verdict)
	}
}

type stubPhotoResolver struct {
	req models.FoodIdentityRequest
	err error
}

func (s *stubPhotoResolver) ResolvePhotoIdentity(image []byte) (models.FoodIdentityRequest, error) {
	return s.req, s.err
}

type stubBarcodeResolver struct {
	req models.FoodIdentityRequest
	err error
}

func (s *stubBarcodeResolver) ResolveBarcodeIdentity(code string) (models.FoodIdentityRequest, error) {
	return s.req, s.err
}

func TestControllerTextEndToEnd(t *testing.T) {
	analyzer := &stubAnalyzer{verdict: models.RiskVerdict{
		Recommendation: "Avoid this.",
		RiskByAllergen: map[string]int{"Dairy": 80},
		OverallRisk:    80,
		Alternatives:   []models.Alternative{{Name: "Oat bar", URL: "https://www.google.com/search?q=Oat+bar"}},
	}}
	c := NewPipelineController(analyzer, &stubPhotoResolver{}, &stubBarcodeResolver{})

	profile := models.NewAllergenProfile()
	profile["Dairy"] = models.SeveritySevere

	state, err := c.AnalyzeText(7, "  Kit Kat  ", profile)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if state.Phase != models.PhaseSucceeded {
		t.Fatalf("phase = %s, want succeeded", state.Phase)
	}
	if state.Verdict.OverallRisk != 80 {
		t.Fatalf("overall risk = %d, want 80", state.Verdict.OverallRisk)
	}
	if analyzer.lastFood != "Kit Kat" {
		t.Fatalf("analyzer food = %q, want trimmed identity", analyzer.lastFood)
	}
	if got := c.LastIdentity(7); got.FoodItem != "Kit Kat" || got.Modality != models.ModalityText {
		t.Fatalf("last identity = %+v", got)
	}
}

func TestControllerEmptyTextNeverReachesPipeline(t *testing.T) {
	analyzer := &stubAnalyzer{}
	c := NewPipelineController(analyzer, &stubPhotoResolver{}, &stubBarcodeResolver{})

	_, err := c.AnalyzeText(7, "   ", models.NewAllergenProfile())
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if got := c.State(7).Phase; got != models.PhaseIdle {
		t.Fatalf("phase = %s, want idle (blank input is recovered locally)", got)
	}
	if analyzer.callCount() != 0 {
		t.Fatal("analyzer must not run for blank input")
	}
}

func TestControllerBarcodeMissSkipsAnalysis(t *testing.T) {
	analyzer := &stubAnalyzer{}
	c := NewPipelineController(analyzer, &stubPhotoResolver{}, &stubBarcodeResolver{err: ErrNoFoodRecognized})

	state, err := c.AnalyzeBarcode(3, "X012345678905", models.NewAllergenProfile())
	if err != nil {
		t.Fatalf("AnalyzeBarcode: %v", err)
	}
	if state.Phase != models.PhaseFailed || state.Reason.Code != "no_food_recognized" {
		t.Fatalf("state = %+v, want failed/no_food_recognized", state)
	}
	if analyzer.callCount() != 0 {
		t.Fatal("analyzer must not run when the resolver fails")
	}
}

func TestControllerPhotoFailure(t *testing.T) {
	analyzer := &stubAnalyzer{}
	c := NewPipelineController(analyzer, &stubPhotoResolver{err: ErrNoFoodRecognized}, &stubBarcodeResolver{})

	rec := &stateRecorder{}
	c.OnTransition(func(userID uint, st models.PipelineState) { rec.record(st) })

	state, err := c.AnalyzePhoto(5, []byte("img"), models.NewAllergenProfile())
	if err != nil {
		t.Fatalf("AnalyzePhoto: %v", err)
	}
	if state.Phase != models.PhaseFailed {
		t.Fatalf("phase = %s, want failed", state.Phase)
	}

	phases := rec.phases()
	if len(phases) != 2 || phases[0] != models.PhaseInFlight || phases[1] != models.PhaseFailed {
		t.Fatalf("observed phases %v, want [in_flight failed]", phases)
	}
	rec.mu.Lock()
	label := rec.states[0].Label
	rec.mu.Unlock()
	if label != "Analyzing your photo!" {
		t.Fatalf("in-flight label = %q", label)
	}
}

func TestControllerPipelinesAreIndependent(t *testing.T) {
	release := make(chan struct{})
	analyzer := &stubAnalyzer{
		verdict: models.RiskVerdict{Recommendation: "ok"},
		release: release,
	}
	c := NewPipelineController(analyzer, &stubPhotoResolver{}, &stubBarcodeResolver{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.AnalyzeText(1, "pizza", models.NewAllergenProfile())
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && c.State(1).Phase != models.PhaseInFlight {
		time.Sleep(time.Millisecond)
	}
	if c.State(1).Phase != models.PhaseInFlight {
		t.Fatal("user 1 never went in flight")
	}

	// Another user's pipeline is unaffected by user 1's outstanding run.
	if got := c.State(2).Phase; got != models.PhaseIdle {
		t.Fatalf("user 2 phase = %s, want idle", got)
	}

	close(release)
	<-done
}
