package services

import (
	"errors"
	"testing"

	"nomify/models"
)

func TestResolveTextIdentityTrims(t *testing.T) {
	req, err := ResolveTextIdentity("  Kit Kat  ")
	if err != nil {
		t.Fatalf("ResolveTextIdentity: %v", err)
	}
	if req.FoodItem != "Kit Kat" {
		t.Fatalf("identity = %q, want %q", req.FoodItem, "Kit Kat")
	}
	if req.Modality != models.ModalityText {
		t.Fatalf("modality = %q, want text", req.Modality)
	}
}

func TestResolveTextIdentityEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := ResolveTextIdentity(raw)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("ResolveTextIdentity(%q) err = %v, want ErrEmptyInput", raw, err)
		}
	}
}

func TestInFlightLabels(t *testing.T) {
	cases := map[models.Modality]string{
		models.ModalityText:    "Nomifying your food!",
		models.ModalityPhoto:   "Analyzing your photo!",
		models.ModalityBarcode: "Processing your barcode!",
	}
	for modality, want := range cases {
		if got := InFlightLabel(modality); got != want {
			t.Errorf("InFlightLabel(%s) = %q, want %q", modality, got, want)
		}
	}
}
