package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"econsim/econ"
)

// CountryEncoder maps a country name to the integer category the model
// was trained with: code = index into the fitted class list. The lookup
// is exact, with no case folding, trimming, or fuzzy matching — the
// codes are only valid for the spelling the encoder was fitted on, so a
// near-miss must fail rather than silently encode a different country.
type CountryEncoder struct {
	classes []string
	codes   map[string]int
}

type encoderArtifact struct {
	Classes []string `json:"classes"`
}

// NewCountryEncoder builds an encoder from an ordered class list.
func NewCountryEncoder(classes []string) (*CountryEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("encoder has no classes")
	}
	codes := make(map[string]int, len(classes))
	for code, country := range classes {
		if country == "" {
			return nil, fmt.Errorf("empty class name at index %d", code)
		}
		if _, exists := codes[country]; exists {
			return nil, fmt.Errorf("duplicate class %q", country)
		}
		codes[country] = code
	}
	return &CountryEncoder{classes: classes, codes: codes}, nil
}

// LoadCountryEncoder loads the encoder artifact, a JSON object holding
// the ordered class list from training.
func LoadCountryEncoder(path string) (*CountryEncoder, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact encoderArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, err
	}
	return NewCountryEncoder(artifact.Classes)
}

// Encode returns the country's category code. Pure lookup, no side
// effects; never returns a fallback code for an unknown country.
func (e *CountryEncoder) Encode(country string) (int, error) {
	code, ok := e.codes[country]
	if !ok {
		return 0, &econ.UnknownCountryError{Country: country}
	}
	return code, nil
}

// Classes returns the fitted class list in code order. The returned
// slice is shared and must not be modified.
func (e *CountryEncoder) Classes() []string {
	return e.classes
}

func (e *CountryEncoder) Save(path string) error {
	payload, err := json.Marshal(encoderArtifact{Classes: e.classes})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
