package db

import (
	"database/sql"
	"errors"

	"econsim/econ"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS observations (
        id INTEGER PRIMARY KEY,
        country TEXT NOT NULL,
        year INTEGER NOT NULL,
        gdp_growth REAL NOT NULL,
        exports_growth REAL NOT NULL,
        imports_growth REAL NOT NULL,
        investment_growth REAL,
        consumption_growth REAL,
        govt_spend_growth REAL,
        population_growth REAL,
        UNIQUE(country, year)
    );
    CREATE INDEX IF NOT EXISTS idx_observations_country ON observations(country);
    `

	_, err = database.Exec(query)
	return err
}

// SaveObservations writes a batch of observations in one transaction.
// Existing (country, year) rows are replaced, so re-importing a dataset
// is idempotent.
func SaveObservations(observations []econ.Observation) error {
	if database == nil {
		return errors.New("database not initialized")
	}

	tx, err := database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT OR REPLACE INTO observations
            (country, year, gdp_growth, exports_growth, imports_growth,
             investment_growth, consumption_growth, govt_spend_growth, population_growth)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, obs := range observations {
		_, err := stmt.Exec(
			obs.Country, obs.Year, obs.GDPGrowth, obs.ExportsGrowth, obs.ImportsGrowth,
			nullable(obs.InvestmentGrowth), nullable(obs.ConsumptionGrowth),
			nullable(obs.GovtSpendGrowth), nullable(obs.PopulationGrowth))
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// QueryObservations loads the full observation table, ordered by country
// and year. Called once at startup to build the in-memory index.
func QueryObservations() ([]econ.Observation, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := database.Query(`
        SELECT country, year, gdp_growth, exports_growth, imports_growth,
               investment_growth, consumption_growth, govt_spend_growth, population_growth
        FROM observations
        ORDER BY country, year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []econ.Observation
	for rows.Next() {
		var obs econ.Observation
		var investment, consumption, govtSpend, population sql.NullFloat64
		err := rows.Scan(&obs.Country, &obs.Year, &obs.GDPGrowth, &obs.ExportsGrowth, &obs.ImportsGrowth,
			&investment, &consumption, &govtSpend, &population)
		if err != nil {
			return nil, err
		}
		obs.InvestmentGrowth = fromNullable(investment)
		obs.ConsumptionGrowth = fromNullable(consumption)
		obs.GovtSpendGrowth = fromNullable(govtSpend)
		obs.PopulationGrowth = fromNullable(population)
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// CountObservations returns the number of stored rows.
func CountObservations() (int, error) {
	if database == nil {
		return 0, errors.New("database not initialized")
	}
	var count int
	err := database.QueryRow(`SELECT COUNT(*) FROM observations`).Scan(&count)
	return count, err
}

// Close closes the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	value := v.Float64
	return &value
}
