package ml

import (
	"fmt"

	"econsim/econ"
)

// ScenarioPredictor runs the inference pipeline: country encoding, rate
// validation, vector assembly, model invocation. It holds only read-only
// state, so one instance serves all requests concurrently.
type ScenarioPredictor struct {
	encoder *CountryEncoder
	model   Regressor
}

// NewScenarioPredictor wires an encoder with a loaded regressor and
// verifies the model's input width against the scenario schema.
func NewScenarioPredictor(encoder *CountryEncoder, model Regressor) (*ScenarioPredictor, error) {
	if got := model.NumFeatures(); got != FeatureCount {
		return nil, fmt.Errorf("model expects %d features, scenario schema has %d", got, FeatureCount)
	}
	return &ScenarioPredictor{encoder: encoder, model: model}, nil
}

// Predict returns the model's GDP growth prediction for the scenario.
// The country must match the training-time spelling; an unknown country
// or an invalid rate fails before the model is invoked. The model output
// is returned unmodified — no rounding or clamping.
func (p *ScenarioPredictor) Predict(country string, rates econ.GrowthRates) (float64, error) {
	code, err := p.encoder.Encode(country)
	if err != nil {
		return 0, err
	}
	if err := ValidateRates(rates); err != nil {
		return 0, err
	}
	return p.model.Predict(ScenarioVector(code, rates))
}

// Countries returns the encoder's fitted class list.
func (p *ScenarioPredictor) Countries() []string {
	return p.encoder.Classes()
}
