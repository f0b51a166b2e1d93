package econ

import "sort"

// HistoryIndex holds the full observation table in memory, grouped by
// country. It is built once at startup and never mutated afterwards, so
// a single instance is shared across all requests without locking or
// per-request copies.
type HistoryIndex struct {
	byCountry map[string][]Observation
	countries []string
	size      int
	minYear   int
	maxYear   int
}

// NewHistoryIndex builds the index from the loaded table. Each country's
// series is sorted ascending by year. Duplicate (country, year) rows are
// collapsed with last-write-wins: the row that appeared later in the
// input replaces the earlier one.
func NewHistoryIndex(observations []Observation) *HistoryIndex {
	byCountry := make(map[string][]Observation)
	for _, obs := range observations {
		byCountry[obs.Country] = append(byCountry[obs.Country], obs)
	}

	index := &HistoryIndex{byCountry: byCountry}
	for country, series := range byCountry {
		// Stable sort keeps input order within a year, so the last
		// element for each year is the latest input row.
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Year < series[j].Year
		})

		deduped := make([]Observation, 0, len(series))
		for _, obs := range series {
			if n := len(deduped); n > 0 && deduped[n-1].Year == obs.Year {
				deduped[n-1] = obs
				continue
			}
			deduped = append(deduped, obs)
		}

		byCountry[country] = deduped
		index.countries = append(index.countries, country)
		index.size += len(deduped)

		if index.minYear == 0 || deduped[0].Year < index.minYear {
			index.minYear = deduped[0].Year
		}
		if last := deduped[len(deduped)-1].Year; last > index.maxYear {
			index.maxYear = last
		}
	}
	sort.Strings(index.countries)

	return index
}

// Query returns the country's observations ascending by year. An empty
// result is a valid outcome, distinct from an unknown model category.
// The returned slice is shared and must not be modified.
func (idx *HistoryIndex) Query(country string) []Observation {
	return idx.byCountry[country]
}

// Countries returns the distinct country names present, sorted. The
// returned slice is shared and must not be modified.
func (idx *HistoryIndex) Countries() []string {
	return idx.countries
}

// Size returns the number of rows after de-duplication.
func (idx *HistoryIndex) Size() int {
	return idx.size
}

// YearRange returns the earliest and latest year on record across all
// countries. Both are zero for an empty index.
func (idx *HistoryIndex) YearRange() (int, int) {
	return idx.minYear, idx.maxYear
}
