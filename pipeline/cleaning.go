package pipeline

import (
	"fmt"
	"math"
	"time"

	"econsim/econ"
)

// CleaningRule validates one observation. A non-nil error rejects the
// row.
type CleaningRule interface {
	Apply(obs *econ.Observation) error
	Name() string
}

// CleaningStats summarizes one cleaning pass.
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Duplicates     int64            `json:"duplicates"`
	Issues         map[string]int64 `json:"issues"`
}

// DataCleaner applies validation rules to parsed observations before
// they reach storage.
type DataCleaner struct {
	rules []CleaningRule
}

// NewDataCleaner creates a cleaner with the default rules.
func NewDataCleaner() *DataCleaner {
	cleaner := &DataCleaner{}
	cleaner.AddRule(NewCompletenessRule())
	cleaner.AddRule(NewYearRangeRule())
	cleaner.AddRule(NewRateRangeRule())
	return cleaner
}

func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
}

// Clean validates each observation and collapses duplicate
// (country, year) keys with last-write-wins. Rejected and replaced rows
// are counted in the returned stats; duplicates never abort the run.
func (dc *DataCleaner) Clean(observations []econ.Observation) ([]econ.Observation, CleaningStats) {
	stats := CleaningStats{Issues: make(map[string]int64)}

	type key struct {
		country string
		year    int
	}
	position := make(map[key]int)

	var cleaned []econ.Observation
	for i := range observations {
		obs := observations[i]
		stats.TotalProcessed++

		rejected := false
		for _, rule := range dc.rules {
			if err := rule.Apply(&obs); err != nil {
				stats.Rejected++
				stats.Issues[rule.Name()]++
				rejected = true
				break
			}
		}
		if rejected {
			continue
		}

		k := key{country: obs.Country, year: obs.Year}
		if idx, seen := position[k]; seen {
			cleaned[idx] = obs
			stats.Duplicates++
			continue
		}
		position[k] = len(cleaned)
		cleaned = append(cleaned, obs)
		stats.Passed++
	}

	return cleaned, stats
}

// ============ rules ============

// CompletenessRule rejects rows missing the key or a required rate.
type CompletenessRule struct{}

func NewCompletenessRule() *CompletenessRule {
	return &CompletenessRule{}
}

func (r *CompletenessRule) Name() string {
	return "completeness"
}

func (r *CompletenessRule) Apply(obs *econ.Observation) error {
	if obs.Country == "" {
		return fmt.Errorf("missing country")
	}
	required := []struct {
		name  string
		value float64
	}{
		{"gdp_growth", obs.GDPGrowth},
		{"exports_growth", obs.ExportsGrowth},
		{"imports_growth", obs.ImportsGrowth},
	}
	for _, field := range required {
		if math.IsNaN(field.value) {
			return fmt.Errorf("missing %s for %s/%d", field.name, obs.Country, obs.Year)
		}
	}
	return nil
}

// YearRangeRule rejects years outside the plausible dataset range.
type YearRangeRule struct {
	MinYear int
	MaxYear int
}

func NewYearRangeRule() *YearRangeRule {
	return &YearRangeRule{
		MinYear: 1960, // earliest World Bank coverage
		MaxYear: time.Now().Year() + 1,
	}
}

func (r *YearRangeRule) Name() string {
	return "year_range"
}

func (r *YearRangeRule) Apply(obs *econ.Observation) error {
	if obs.Year < r.MinYear || obs.Year > r.MaxYear {
		return fmt.Errorf("year %d out of range [%d, %d]", obs.Year, r.MinYear, r.MaxYear)
	}
	return nil
}

// RateRangeRule rejects rows where a growth rate is non-finite beyond
// allowed gaps, or so large it can only be a data error.
type RateRangeRule struct {
	Limit float64
}

func NewRateRangeRule() *RateRangeRule {
	return &RateRangeRule{Limit: 1000.0}
}

func (r *RateRangeRule) Name() string {
	return "rate_range"
}

func (r *RateRangeRule) Apply(obs *econ.Observation) error {
	rates := []struct {
		name  string
		value *float64
	}{
		{"gdp_growth", &obs.GDPGrowth},
		{"exports_growth", &obs.ExportsGrowth},
		{"imports_growth", &obs.ImportsGrowth},
		{"investment_growth", obs.InvestmentGrowth},
		{"consumption_growth", obs.ConsumptionGrowth},
		{"govt_spend_growth", obs.GovtSpendGrowth},
		{"population_growth", obs.PopulationGrowth},
	}
	for _, rate := range rates {
		if rate.value == nil {
			continue
		}
		v := *rate.value
		if math.IsInf(v, 0) {
			return fmt.Errorf("%s is not finite for %s/%d", rate.name, obs.Country, obs.Year)
		}
		if !math.IsNaN(v) && math.Abs(v) > r.Limit {
			return fmt.Errorf("%s %.2f exceeds limit %.0f for %s/%d", rate.name, v, r.Limit, obs.Country, obs.Year)
		}
	}
	return nil
}
