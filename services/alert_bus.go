package services

import (
	"fmt"
	"time"

	"nomify/models"

	"gorm.io/gorm"
)

// HighRiskThreshold is the overall risk percentage at or above which a
// successful verdict raises an alert for users with a severe allergy.
const HighRiskThreshold = 75

type alertDeps struct {
	db *gorm.DB
	rt *RealtimeHub
	ps *PushService
}

var _alert alertDeps

func InitAlertDeps(db *gorm.DB, rt *RealtimeHub, ps *PushService) {
	_alert = alertDeps{db: db, rt: rt, ps: ps}
}

// EmitHighRiskAlert persists a high-risk warning for a food item and
// fans it out over websocket and push. Safe to call anywhere; no-ops
// when the bus is not initialized.
func EmitHighRiskAlert(userID uint, foodItem string, overallRisk int) {
	if _alert.db == nil {
		return
	}
	msg := fmt.Sprintf("%s was rated %d%% risk for your allergen profile.", foodItem, overallRisk)
	a := &models.Alert{
		UserID:      userID,
		Type:        "high_risk",
		FoodItem:    foodItem,
		OverallRisk: overallRisk,
		Message:     msg,
		CreatedAt:   time.Now(),
	}
	_ = _alert.db.Create(a).Error

	if _alert.rt != nil {
		_alert.rt.BroadcastAlert(userID, a)
	}
	if _alert.ps != nil {
		_alert.ps.PushToUser(userID, "High allergy risk", msg, map[string]string{
			"type": a.Type, "alertId": fmt.Sprintf("%d", a.ID),
		})
	}
}

// ShouldAlert applies the alerting policy: a succeeded verdict at or
// above threshold, for a profile carrying at least one severe allergy.
func ShouldAlert(state models.PipelineState, profile models.AllergenProfile) bool {
	if state.Phase != models.PhaseSucceeded || state.Verdict == nil {
		return false
	}
	if state.Verdict.OverallRisk < HighRiskThreshold {
		return false
	}
	for _, sev := range profile {
		if sev == models.SeveritySevere {
			return true
		}
	}
	return false
}
