package models

import "time"

// Alert records a high-risk warning raised after an analysis run.
// It persists the warning only, never the verdict itself.
type Alert struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index"`
	Type        string `gorm:"size:20"` // "high_risk" | "info"
	FoodItem    string `gorm:"size:255"`
	OverallRisk int
	Message     string `gorm:"type:text"`
	CreatedAt   time.Time
}
