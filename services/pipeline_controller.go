package services

import (
	"sync"

	"nomify/models"
)

// PhotoResolver turns raw image bytes into a canonical food identity.
type PhotoResolver interface {
	ResolvePhotoIdentity(image []byte) (models.FoodIdentityRequest, error)
}

// BarcodeResolver turns a scanned code into a canonical food identity.
type BarcodeResolver interface {
	ResolveBarcodeIdentity(code string) (models.FoodIdentityRequest, error)
}

// PipelineController binds the three input modalities to per-user
// analysis pipelines. Single-flight is enforced by the pipeline itself;
// the controller's job is sequencing modality → resolver → submit and
// fanning state transitions out to observers.
type PipelineController struct {
	mu        sync.Mutex
	pipelines map[uint]*AnalysisPipeline

	analyzer RiskAnalyzer
	photo    PhotoResolver
	barcode  BarcodeResolver

	// onTransition, when set, observes every state change of every
	// user's pipeline (used for websocket fan-out and alerting).
	onTransition func(userID uint, state models.PipelineState)
}

func NewPipelineController(analyzer RiskAnalyzer, photo PhotoResolver, barcode BarcodeResolver) *PipelineController {
	return &PipelineController{
		pipelines: make(map[uint]*AnalysisPipeline),
		analyzer:  analyzer,
		photo:     photo,
		barcode:   barcode,
	}
}

// OnTransition registers the fan-out hook. Call before serving traffic.
func (c *PipelineController) OnTransition(fn func(userID uint, state models.PipelineState)) {
	c.onTransition = fn
}

func (c *PipelineController) pipelineFor(userID uint) *AnalysisPipeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[userID]; ok {
		return p
	}
	p := NewAnalysisPipeline(c.analyzer)
	if c.onTransition != nil {
		uid := userID
		p.Subscribe(func(st models.PipelineState) {
			c.onTransition(uid, st)
		})
	}
	c.pipelines[userID] = p
	return p
}

// State reports the current pipeline state for a user.
func (c *PipelineController) State(userID uint) models.PipelineState {
	return c.pipelineFor(userID).State()
}

// LastIdentity reports the food identity the user's current terminal
// state speaks about.
func (c *PipelineController) LastIdentity(userID uint) models.FoodIdentityRequest {
	return c.pipelineFor(userID).LastIdentity()
}

// AnalyzeText resolves free-text input and submits it. Blank input is
// recovered here with ErrEmptyInput and never reaches the pipeline.
func (c *PipelineController) AnalyzeText(userID uint, raw string, profile models.AllergenProfile) (models.PipelineState, error) {
	req, err := ResolveTextIdentity(raw)
	if err != nil {
		return c.State(userID), err
	}
	return c.pipelineFor(userID).Submit(req, profile.Clone())
}

// AnalyzePhoto runs the photo resolver and analysis as one chain; the
// pipeline stays InFlight for the whole of it.
func (c *PipelineController) AnalyzePhoto(userID uint, image []byte, profile models.AllergenProfile) (models.PipelineState, error) {
	return c.pipelineFor(userID).Run(InFlightLabel(models.ModalityPhoto), func() (models.FoodIdentityRequest, error) {
		return c.photo.ResolvePhotoIdentity(image)
	}, profile.Clone())
}

// AnalyzeBarcode runs the barcode resolver and analysis as one chain.
func (c *PipelineController) AnalyzeBarcode(userID uint, code string, profile models.AllergenProfile) (models.PipelineState, error) {
	return c.pipelineFor(userID).Run(InFlightLabel(models.ModalityBarcode), func() (models.FoodIdentityRequest, error) {
		return c.barcode.ResolveBarcodeIdentity(code)
	}, profile.Clone())
}
