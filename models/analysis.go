package models

// Modality says which input affordance produced a food identity.
type Modality string

const (
	ModalityText    Modality = "text"
	ModalityPhoto   Modality = "photo"
	ModalityBarcode Modality = "barcode"
)

// FoodIdentityRequest is a resolved, canonical text identity for a food
// item plus the modality that produced it. It is consumed exactly once
// by the analysis pipeline and never persisted.
type FoodIdentityRequest struct {
	FoodItem string   `json:"food_item"`
	Modality Modality `json:"modality"`
}

// Alternative is one substitute suggestion from a risk analysis.
type Alternative struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RiskVerdict is the structured result of one successful analysis run.
// It is replaced wholesale by the next run, never merged.
type RiskVerdict struct {
	Recommendation string         `json:"recommendation"`
	RiskByAllergen map[string]int `json:"risk_by_allergen"`
	OverallRisk    int            `json:"overall_risk"`
	Alternatives   []Alternative  `json:"alternatives"`
}

// PipelinePhase enumerates the analysis pipeline's lifecycle.
type PipelinePhase string

const (
	PhaseIdle      PipelinePhase = "idle"
	PhaseInFlight  PipelinePhase = "in_flight"
	PhaseFailed    PipelinePhase = "failed"
	PhaseSucceeded PipelinePhase = "succeeded"
)

// FailureReason is a user-presentable failure carried by a Failed state.
type FailureReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PipelineState is the sole externally observable product of the
// pipeline: exactly one of Label, Reason, Verdict is populated,
// matching Phase. UI flags are projections of this one value.
type PipelineState struct {
	Phase   PipelinePhase  `json:"phase"`
	Label   string         `json:"label,omitempty"`
	Reason  *FailureReason `json:"reason,omitempty"`
	Verdict *RiskVerdict   `json:"verdict,omitempty"`
}

func IdleState() PipelineState {
	return PipelineState{Phase: PhaseIdle}
}

func InFlightState(label string) PipelineState {
	return PipelineState{Phase: PhaseInFlight, Label: label}
}

func FailedState(reason FailureReason) PipelineState {
	return PipelineState{Phase: PhaseFailed, Reason: &reason}
}

func SucceededState(verdict RiskVerdict) PipelineState {
	return PipelineState{Phase: PhaseSucceeded, Verdict: &verdict}
}
