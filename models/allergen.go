package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Severity is how strongly a user reacts to one allergen.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Allergens is the fixed set tracked per user, in display order.
var Allergens = []string{
	"Dairy", "Eggs", "Fish", "Shellfish", "Tree Nuts",
	"Peanuts", "Wheat", "Soybeans", "Sesame",
}

// Phrase returns the severity as it reads in an allergy statement,
// e.g. "mildly allergic to Dairy".
func (s Severity) Phrase() string {
	switch s {
	case SeverityMild:
		return "mildly allergic"
	case SeverityModerate:
		return "moderately allergic"
	case SeveritySevere:
		return "severely allergic"
	default:
		return "not allergic"
	}
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityNone, SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// AllergenProfile maps every tracked allergen to exactly one severity.
// The analysis pipeline only ever reads it; it is owned by the profile store.
type AllergenProfile map[string]Severity

// NewAllergenProfile returns a profile with every allergen set to none,
// the default for users who have not configured one yet.
func NewAllergenProfile() AllergenProfile {
	p := make(AllergenProfile, len(Allergens))
	for _, a := range Allergens {
		p[a] = SeverityNone
	}
	return p
}

// Clone hands out an independent copy so callers can treat the
// original as read-only.
func (p AllergenProfile) Clone() AllergenProfile {
	out := make(AllergenProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// HasActiveAllergy reports whether any allergen is set above none.
func (p AllergenProfile) HasActiveAllergy() bool {
	for _, sev := range p {
		if sev != SeverityNone {
			return true
		}
	}
	return false
}

// Validate checks the profile invariant: every tracked allergen present
// exactly once with a known severity, and nothing extra.
func (p AllergenProfile) Validate() error {
	if len(p) != len(Allergens) {
		return fmt.Errorf("profile must cover all %d allergens, got %d entries", len(Allergens), len(p))
	}
	for _, a := range Allergens {
		sev, ok := p[a]
		if !ok {
			return fmt.Errorf("profile missing allergen %q", a)
		}
		if !sev.Valid() {
			return fmt.Errorf("unknown severity %q for allergen %q", sev, a)
		}
	}
	return nil
}

// AllergenEntry is one persisted (user, allergen) → severity row.
type AllergenEntry struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_user_allergen;not null"`
	Allergen string `gorm:"uniqueIndex:idx_user_allergen;size:32;not null"`
	Severity string `gorm:"size:16;not null"`
}
