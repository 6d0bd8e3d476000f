package services

import (
	"testing"

	"nomify/models"
)

func TestShouldAlert(t *testing.T) {
	severe := models.NewAllergenProfile()
	severe["Peanuts"] = models.SeveritySevere

	mildOnly := models.NewAllergenProfile()
	mildOnly["Dairy"] = models.SeverityMild

	verdict := func(risk int) models.PipelineState {
		return models.SucceededState(models.RiskVerdict{Recommendation: "x", OverallRisk: risk})
	}

	cases := []struct {
		name    string
		state   models.PipelineState
		profile models.AllergenProfile
		want    bool
	}{
		{"high risk with severe allergy", verdict(90), severe, true},
		{"at threshold", verdict(HighRiskThreshold), severe, true},
		{"below threshold", verdict(HighRiskThreshold - 1), severe, false},
		{"no severe allergy", verdict(90), mildOnly, false},
		{"failed run", models.FailedState(FailureReasonFor(ErrServiceUnavailable)), severe, false},
		{"in flight", models.InFlightState("Nomifying your food!"), severe, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldAlert(tc.state, tc.profile); got != tc.want {
				t.Fatalf("ShouldAlert = %v, want %v", got, tc.want)
			}
		})
	}
}
