package models

import "testing"

func TestNewAllergenProfileCoversEveryAllergen(t *testing.T) {
	p := NewAllergenProfile()
	if len(p) != len(Allergens) {
		t.Fatalf("profile has %d entries, want %d", len(p), len(Allergens))
	}
	for _, a := range Allergens {
		sev, ok := p[a]
		if !ok {
			t.Fatalf("missing allergen %q", a)
		}
		if sev != SeverityNone {
			t.Fatalf("allergen %q defaults to %q, want none", a, sev)
		}
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
}

func TestAllergenProfileValidate(t *testing.T) {
	missing := NewAllergenProfile()
	delete(missing, "Sesame")
	if err := missing.Validate(); err == nil {
		t.Fatal("expected error for missing allergen")
	}

	extra := NewAllergenProfile()
	extra["Gluten"] = SeverityMild
	if err := extra.Validate(); err == nil {
		t.Fatal("expected error for extra entry")
	}

	bad := NewAllergenProfile()
	bad["Dairy"] = Severity("fatal")
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown severity")
	}
}

func TestAllergenProfileCloneIsIndependent(t *testing.T) {
	p := NewAllergenProfile()
	clone := p.Clone()
	clone["Dairy"] = SeveritySevere
	if p["Dairy"] != SeverityNone {
		t.Fatal("mutating the clone leaked into the original")
	}
}

func TestHasActiveAllergy(t *testing.T) {
	p := NewAllergenProfile()
	if p.HasActiveAllergy() {
		t.Fatal("default profile should have no active allergy")
	}
	p["Fish"] = SeverityModerate
	if !p.HasActiveAllergy() {
		t.Fatal("expected active allergy after edit")
	}
}

func TestSeverityPhrase(t *testing.T) {
	cases := map[Severity]string{
		SeverityNone:     "not allergic",
		SeverityMild:     "mildly allergic",
		SeverityModerate: "moderately allergic",
		SeveritySevere:   "severely allergic",
	}
	for sev, want := range cases {
		if got := sev.Phrase(); got != want {
			t.Errorf("Phrase(%s) = %q, want %q", sev, got, want)
		}
	}
}
