package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"econsim/econ"
)

// Column names as they appear in the World Bank derived dataset. The
// growth-rate columns keep the upstream indicator names verbatim.
const (
	colCountry     = "Country"
	colYear        = "Year"
	colGDP         = "GDP_Growth_Rate"
	colExports     = "Exports of goods and services_Growth_Rate"
	colImports     = "Imports of goods and services_Growth_Rate"
	colPopulation  = "Population_Growth_Rate"
	colInvestment  = "Gross capital formation_Growth_Rate"
	colConsumption = "Final consumption expenditure_Growth_Rate"
	colGovtSpend   = "Government_Expenditure_Growth_Rate"
)

// ParseDataset reads the historical dataset CSV from r. encoding selects
// the source charset: "" or "utf8" passes bytes through, "latin1" /
// "windows-1252" transcodes, which some dataset exports need for
// accented country names. Missing values parse to NaN (required columns)
// or nil (optional columns); the cleaner decides what to reject.
func ParseDataset(r io.Reader, encoding string) ([]econ.Observation, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
	case "latin1", "windows-1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{colCountry, colYear, colGDP, colExports, colImports} {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("dataset missing required column %q", name)
		}
	}

	var observations []econ.Observation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		obs, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

func parseRecord(record []string, columns map[string]int) (econ.Observation, error) {
	var obs econ.Observation
	var err error

	obs.Country = field(record, columns[colCountry])

	yearField := field(record, columns[colYear])
	if obs.Year, err = parseYear(yearField); err != nil {
		return obs, err
	}

	if obs.GDPGrowth, err = parseRate(colGDP, field(record, columns[colGDP])); err != nil {
		return obs, err
	}
	if obs.ExportsGrowth, err = parseRate(colExports, field(record, columns[colExports])); err != nil {
		return obs, err
	}
	if obs.ImportsGrowth, err = parseRate(colImports, field(record, columns[colImports])); err != nil {
		return obs, err
	}

	optionals := []struct {
		name string
		dst  **float64
	}{
		{colInvestment, &obs.InvestmentGrowth},
		{colConsumption, &obs.ConsumptionGrowth},
		{colGovtSpend, &obs.GovtSpendGrowth},
		{colPopulation, &obs.PopulationGrowth},
	}
	for _, opt := range optionals {
		idx, ok := columns[opt.name]
		if !ok {
			continue
		}
		value, err := parseRate(opt.name, field(record, idx))
		if err != nil {
			return obs, err
		}
		if !math.IsNaN(value) {
			*opt.dst = &value
		}
	}

	return obs, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseYear(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty %s", colYear)
	}
	// Some exports carry years as floats ("2019.0").
	if year, err := strconv.Atoi(raw); err == nil {
		return year, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", colYear, raw)
	}
	return int(value), nil
}

// parseRate parses one growth-rate cell. Empty and NA-style cells come
// back as NaN rather than an error so one sparse row cannot abort a
// whole import.
func parseRate(column, raw string) (float64, error) {
	switch strings.ToLower(raw) {
	case "", "na", "n/a", "nan", "null":
		return math.NaN(), nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", column, raw)
	}
	return value, nil
}
