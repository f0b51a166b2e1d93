package econ

// DefaultBaselineWindow is the number of most recent observed values
// averaged per indicator when no window is configured.
const DefaultBaselineWindow = 5

// BaselineEstimator derives representative recent growth rates per
// indicator for a country from the history index.
//
// Policy: each rate is the mean of the country's most recent window
// values for that indicator, skipping years where the indicator was not
// observed. The same policy applies to all six indicators, and the index
// is immutable, so repeated calls return identical results.
type BaselineEstimator struct {
	index  *HistoryIndex
	window int
}

func NewBaselineEstimator(index *HistoryIndex, window int) *BaselineEstimator {
	if window <= 0 {
		window = DefaultBaselineWindow
	}
	return &BaselineEstimator{index: index, window: window}
}

// Estimate returns the baseline rates for a country. It fails with
// InsufficientHistoryError when the country has no observations at all,
// or when one of the indicators was never observed for it. No global or
// default rate is ever substituted.
func (e *BaselineEstimator) Estimate(country string) (GrowthRates, error) {
	series := e.index.Query(country)
	if len(series) == 0 {
		return GrowthRates{}, &InsufficientHistoryError{Country: country}
	}

	var rates GrowthRates
	indicators := []struct {
		name  string
		value func(Observation) (float64, bool)
		dst   *float64
	}{
		{"population growth", optional(func(o Observation) *float64 { return o.PopulationGrowth }), &rates.Population},
		{"exports growth", required(func(o Observation) float64 { return o.ExportsGrowth }), &rates.Exports},
		{"imports growth", required(func(o Observation) float64 { return o.ImportsGrowth }), &rates.Imports},
		{"investment growth", optional(func(o Observation) *float64 { return o.InvestmentGrowth }), &rates.Investment},
		{"consumption growth", optional(func(o Observation) *float64 { return o.ConsumptionGrowth }), &rates.Consumption},
		{"government spending growth", optional(func(o Observation) *float64 { return o.GovtSpendGrowth }), &rates.GovtSpend},
	}

	for _, indicator := range indicators {
		mean, ok := e.trailingMean(series, indicator.value)
		if !ok {
			return GrowthRates{}, &InsufficientHistoryError{Country: country, Indicator: indicator.name}
		}
		*indicator.dst = mean
	}

	return rates, nil
}

// Window returns the configured averaging window.
func (e *BaselineEstimator) Window() int {
	return e.window
}

// trailingMean averages the most recent observed values of one
// indicator, walking backwards from the latest year. ok is false when
// the indicator has no observed value in the whole series.
func (e *BaselineEstimator) trailingMean(series []Observation, value func(Observation) (float64, bool)) (float64, bool) {
	sum := 0.0
	count := 0
	for i := len(series) - 1; i >= 0 && count < e.window; i-- {
		v, ok := value(series[i])
		if !ok {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func required(get func(Observation) float64) func(Observation) (float64, bool) {
	return func(o Observation) (float64, bool) {
		return get(o), true
	}
}

func optional(get func(Observation) *float64) func(Observation) (float64, bool) {
	return func(o Observation) (float64, bool) {
		if v := get(o); v != nil {
			return *v, true
		}
		return 0, false
	}
}
