package ml

import (
	"errors"
	"path/filepath"
	"testing"

	"econsim/econ"
)

func newTestEncoder(t *testing.T) *CountryEncoder {
	t.Helper()
	encoder, err := NewCountryEncoder([]string{"Afghanistan", "Brazil", "United States"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return encoder
}

func TestEncodeStableCodes(t *testing.T) {
	encoder := newTestEncoder(t)

	for i := 0; i < 5; i++ {
		code, err := encoder.Encode("United States")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != 2 {
			t.Fatalf("expected code 2, got %d", code)
		}
	}
}

func TestEncodeUnknownCountry(t *testing.T) {
	encoder := newTestEncoder(t)

	_, err := encoder.Encode("Atlantis")
	var unknownErr *econ.UnknownCountryError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownCountryError, got %v", err)
	}
	if unknownErr.Country != "Atlantis" {
		t.Fatalf("expected offending country in error, got %q", unknownErr.Country)
	}
}

func TestEncodeIsCaseSensitive(t *testing.T) {
	encoder := newTestEncoder(t)

	// The lookup must not case-fold: a different spelling is a
	// different (unknown) category, never a silently reused code.
	if _, err := encoder.Encode("united states"); err == nil {
		t.Fatal("expected error for case-mismatched country")
	}
	if _, err := encoder.Encode(" United States"); err == nil {
		t.Fatal("expected error for padded country")
	}
}

func TestEncoderRejectsDuplicateClasses(t *testing.T) {
	if _, err := NewCountryEncoder([]string{"Brazil", "Brazil"}); err == nil {
		t.Fatal("expected error for duplicate class")
	}
}

func TestEncoderSaveLoad(t *testing.T) {
	encoder := newTestEncoder(t)
	path := filepath.Join(t.TempDir(), "encoder.json")

	if err := encoder.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadCountryEncoder(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	code, err := loaded.Encode("Brazil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 1 {
		t.Fatalf("expected code 1 after reload, got %d", code)
	}
}
