// Command import-dataset loads a historical indicators CSV into the
// SQLite observation store the server reads at startup.
package main

import (
	"flag"
	"log"
	"os"

	"econsim/db"
	"econsim/pipeline"
)

func main() {
	csvPath := flag.String("csv", "", "path to the dataset CSV (required)")
	dbPath := flag.String("db", "./data/econsim.db", "path to the SQLite database")
	encoding := flag.String("encoding", "", "source charset: utf8 (default) or latin1")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	defer file.Close()

	observations, err := pipeline.ParseDataset(file, *encoding)
	if err != nil {
		log.Fatalf("Failed to parse dataset: %v", err)
	}

	cleaned, stats := pipeline.NewDataCleaner().Clean(observations)
	log.Printf("Parsed %d rows: %d passed, %d rejected, %d duplicates",
		stats.TotalProcessed, stats.Passed, stats.Rejected, stats.Duplicates)
	for issue, count := range stats.Issues {
		log.Printf("  %s: %d", issue, count)
	}
	if len(cleaned) == 0 {
		log.Fatal("No valid observations to import")
	}

	if err := db.InitDB(*dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.SaveObservations(cleaned); err != nil {
		log.Fatalf("Failed to save observations: %v", err)
	}

	count, err := db.CountObservations()
	if err != nil {
		log.Fatalf("Failed to count observations: %v", err)
	}
	log.Printf("Imported %d observations into %s (table now holds %d)", len(cleaned), *dbPath, count)
}
