package econ

// Observation is one country-year row of the historical dataset.
// The optional indicators are pointers because the source table does not
// cover every indicator for every country and year; a nil value
// serializes as JSON null, the way the upstream dataset reports gaps.
type Observation struct {
	Country           string   `json:"country"`
	Year              int      `json:"year"`
	GDPGrowth         float64  `json:"gdp_growth"`
	ExportsGrowth     float64  `json:"exports_growth"`
	ImportsGrowth     float64  `json:"imports_growth"`
	InvestmentGrowth  *float64 `json:"investment_growth"`
	ConsumptionGrowth *float64 `json:"consumption_growth"`
	GovtSpendGrowth   *float64 `json:"govt_spend_growth"`
	PopulationGrowth  *float64 `json:"population_growth"`
}

// GrowthRates carries one value per scenario indicator. It is both the
// input shape for a simulation and the output shape of the baseline
// estimator.
type GrowthRates struct {
	Population  float64 `json:"population"`
	Exports     float64 `json:"exports"`
	Imports     float64 `json:"imports"`
	Investment  float64 `json:"investment"`
	Consumption float64 `json:"consumption"`
	GovtSpend   float64 `json:"govt_spend"`
}
