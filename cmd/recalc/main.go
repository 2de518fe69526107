package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/ledger"
	"github.com/camuig/trade-journal/internal/logger"
	"github.com/camuig/trade-journal/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides database.path)")
	asset := flag.String("asset", "", "recalculate a single asset by name")
	dryRun := flag.Bool("dry-run", false, "show stored positions without recalculating")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := logger.New(cfg.Logging.Level)

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database init error: %v\n", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	before, err := repo.ListAssets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "list positions error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Stored positions (%d):\n\n", len(before))
	printPositions(before)

	if *dryRun {
		fmt.Println("Dry run: nothing recalculated.")
		return
	}

	recalc := ledger.New(repo, nil, nil, cfg, log).Recalculator

	var after []storage.Asset
	if *asset != "" {
		a, err := recalc.RecalculateByName(*asset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "recalculate %s: %v\n", *asset, err)
			os.Exit(1)
		}
		after = []storage.Asset{*a}
	} else {
		after, err = recalc.RecalculateAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "recalculate: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Recalculated %d position(s):\n\n", len(after))
	printPositions(after)
}

func printPositions(assets []storage.Asset) {
	for _, a := range assets {
		fmt.Printf("  %s (%s): qty %g, avg %.4f, mark %.2f\n",
			a.AssetName, a.AssetType, a.Quantity, a.AvgBuyPrice, a.CurrentPrice)
	}
	fmt.Println()
}
