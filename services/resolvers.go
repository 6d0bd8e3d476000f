package services

import (
	"strings"

	"nomify/models"
)

// ResolveTextIdentity trims free-text search input into a canonical
// food identity. No external call is made for this modality.
func ResolveTextIdentity(raw string) (models.FoodIdentityRequest, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.FoodIdentityRequest{}, ErrEmptyInput
	}
	return models.FoodIdentityRequest{
		FoodItem: trimmed,
		Modality: models.ModalityText,
	}, nil
}

// InFlightLabel is the human-readable phase description shown while a
// run for the given modality is outstanding.
func InFlightLabel(m models.Modality) string {
	switch m {
	case models.ModalityPhoto:
		return "Analyzing your photo!"
	case models.ModalityBarcode:
		return "Processing your barcode!"
	default:
		return "Nomifying your food!"
	}
}
