package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/swarajb-778/StockPilot/config"
	"github.com/swarajb-778/StockPilot/seed"
)

func main() {
	dir := flag.String("dir", "seedData", "directory holding <entity>.json fixture files")
	resetOnly := flag.Bool("reset", false, "only clear the tables")
	flag.Parse()

	if err := run(*dir, *resetOnly); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(dir string, resetOnly bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(config.NewLogger(os.Stdout, cfg.LogLevel, "text"))

	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	ctx := context.Background()
	if resetOnly {
		return seed.Reset(ctx, db)
	}

	results, err := seed.Run(ctx, db, dir)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Failed > 0 {
			slog.Warn("seed finished with failures", "entity", r.Entity, "failed", r.Failed)
		}
	}
	return nil
}
