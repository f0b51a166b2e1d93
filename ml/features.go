package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"econsim/econ"
)

// Feature slot order is a contract with the trained model artifact: the
// regressor was fitted on vectors in exactly this order, and reordering
// silently corrupts every prediction. All assembly goes through
// ScenarioVector; nothing else may build model input positionally.
const (
	FeatureCountryCode = iota
	FeaturePopulationRate
	FeatureExportsRate
	FeatureImportsRate
	FeatureInvestmentRate
	FeatureConsumptionRate
	FeatureGovtSpendRate

	FeatureCount
)

// Accepted band for scenario growth rates, in percent. Values outside
// it are treated as client input errors, matching the training data's
// domain.
const (
	MinGrowthRate = -100.0
	MaxGrowthRate = 100.0
)

// FeatureNames returns the training-time column names in slot order.
func FeatureNames() []string {
	return []string{
		"Country_Encoded",
		"Population_Growth_Rate",
		"Exports_Growth_Rate",
		"Imports_Growth_Rate",
		"Investment_Growth_Rate",
		"Consumption_Growth_Rate",
		"Govt_Spend_Growth_Rate",
	}
}

// ScenarioVector assembles the model input for an encoded country and a
// set of scenario growth rates.
func ScenarioVector(countryCode int, rates econ.GrowthRates) []float64 {
	vector := make([]float64, FeatureCount)
	vector[FeatureCountryCode] = float64(countryCode)
	vector[FeaturePopulationRate] = rates.Population
	vector[FeatureExportsRate] = rates.Exports
	vector[FeatureImportsRate] = rates.Imports
	vector[FeatureInvestmentRate] = rates.Investment
	vector[FeatureConsumptionRate] = rates.Consumption
	vector[FeatureGovtSpendRate] = rates.GovtSpend
	return vector
}

// ValidateRates rejects non-finite rates and rates outside the accepted
// band before they can reach the model.
func ValidateRates(rates econ.GrowthRates) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"population growth rate", rates.Population},
		{"exports growth rate", rates.Exports},
		{"imports growth rate", rates.Imports},
		{"investment growth rate", rates.Investment},
		{"consumption growth rate", rates.Consumption},
		{"government spending growth rate", rates.GovtSpend},
	}

	for _, check := range checks {
		if math.IsNaN(check.value) || math.IsInf(check.value, 0) {
			return &econ.InvalidInputError{Field: check.name, Reason: "must be a finite number"}
		}
		if check.value < MinGrowthRate || check.value > MaxGrowthRate {
			return &econ.InvalidInputError{
				Field:  check.name,
				Reason: fmt.Sprintf("value %g outside range [%g, %g]", check.value, MinGrowthRate, MaxGrowthRate),
			}
		}
	}
	return nil
}

// FeatureInfo is the feature-order metadata exported alongside the
// model artifact. It exists to catch drift between a retrained model
// and this binary's compiled-in slot order.
type FeatureInfo struct {
	Features []string `json:"features"`
	Target   string   `json:"target"`
}

func LoadFeatureInfo(path string) (*FeatureInfo, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info FeatureInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Verify checks the artifact's column order against the compiled-in
// schema and fails on any mismatch.
func (fi *FeatureInfo) Verify() error {
	expected := FeatureNames()
	if len(fi.Features) != len(expected) {
		return fmt.Errorf("feature info has %d columns, expected %d", len(fi.Features), len(expected))
	}
	for i, name := range expected {
		if fi.Features[i] != name {
			return fmt.Errorf("feature %d is %q, expected %q", i, fi.Features[i], name)
		}
	}
	return nil
}
