package services

import (
	"errors"
	"fmt"

	"nomify/config"
	"nomify/models"

	"gorm.io/gorm"
)

// GetAllergenProfile loads a user's allergen profile. Users who have
// never saved one get the default all-none profile.
func GetAllergenProfile(userID uint) (models.AllergenProfile, error) {
	profile := models.NewAllergenProfile()

	var entries []models.AllergenEntry
	if err := config.DB.Where("user_id = ?", userID).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load allergen profile: %w", err)
	}
	for _, e := range entries {
		if _, tracked := profile[e.Allergen]; tracked {
			profile[e.Allergen] = models.Severity(e.Severity)
		}
	}
	return profile, nil
}

// SaveAllergenProfile validates and upserts the full profile, one row
// per allergen, and marks the user as configured.
func SaveAllergenProfile(userID uint, profile models.AllergenProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	for _, allergen := range models.Allergens {
		sev := profile[allergen]
		var entry models.AllergenEntry
		err := config.DB.Where("user_id = ? AND allergen = ?", userID, allergen).First(&entry).Error
		switch {
		case err == nil:
			entry.Severity = string(sev)
			if err := config.DB.Save(&entry).Error; err != nil {
				return fmt.Errorf("failed to update allergen %q: %w", allergen, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.AllergenEntry{UserID: userID, Allergen: allergen, Severity: string(sev)}
			if err := config.DB.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to create allergen %q: %w", allergen, err)
			}
		default:
			return fmt.Errorf("failed to read allergen %q: %w", allergen, err)
		}
	}

	return config.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("profile_configured", true).Error
}
