package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/prizetable"
	"spin-rewards/internal/reporting"
	pgstore "spin-rewards/internal/storage/postgres"
)

func main() {
	// Parse flags
	draws := flag.Int("draws", 100000, "Number of spins to simulate")
	tableFile := flag.String("table", "", "JSON prize table file ({\"slots\": [...]}); default table if empty")
	postgresDSN := flag.String("postgres-dsn", "", "Load the current prize table from PostgreSQL instead")
	outputDir := flag.String("output-dir", "", "Directory for SIMULATION.md and SLOT_FREQUENCIES.csv")
	csvOnly := flag.Bool("csv", false, "Print CSV to stdout instead of Markdown")
	flag.Parse()

	ctx := context.Background()

	table, err := loadTable(ctx, *tableFile, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prize table: %v\n", err)
		os.Exit(1)
	}
	if err := prizetable.Validate(table.Slots); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := reporting.NewGenerator(table, nil).Generate(ctx, *draws)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		os.Exit(1)
	}

	md := reporting.RenderMarkdown(report)
	csv := reporting.RenderCSV(report.Slots)

	if *outputDir != "" {
		if err := writeOutputs(*outputDir, md, csv); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Simulation report generated successfully:")
		fmt.Printf("  - %s\n", filepath.Join(*outputDir, "SIMULATION.md"))
		fmt.Printf("  - %s\n", filepath.Join(*outputDir, "SLOT_FREQUENCIES.csv"))
	} else if *csvOnly {
		fmt.Print(csv)
	} else {
		fmt.Print(md)
	}

	if !report.Pass {
		os.Exit(2)
	}
}

// loadTable reads the table from a file, from PostgreSQL, or returns the default.
func loadTable(ctx context.Context, file, postgresDSN string) (*domain.PrizeTable, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var t domain.PrizeTable
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}
		return &t, nil

	case postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, postgresDSN, 1)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		return pgstore.NewPrizeTableStore(pool).Get(ctx)

	default:
		return &domain.PrizeTable{Slots: prizetable.Default()}, nil
	}
}

func writeOutputs(dir, md, csv string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "SIMULATION.md"), []byte(md), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "SLOT_FREQUENCIES.csv"), []byte(csv), 0o644)
}
