package main

import (
	"context"
	"flag"
	"log"

	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/migration"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"

	"github.com/muhammadchandra19/exchange/services/market-feed/pkg/config"
)

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of steps to migrate (0 = all, down requires > 0)")
		dir       = flag.String("dir", "", "Migration directory (overrides MIGRATION_DIR)")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dir != "" {
		cfg.Migration.Dir = *dir
	}

	appLogger, err := logger.NewLogger(cfg.LoggerOptions()...)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	pg, err := postgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pg.Close()

	runner := migration.NewRunner(pg, appLogger, cfg.Migration)
	if err := runner.EnsureTable(ctx); err != nil {
		log.Fatalf("Failed to create migration table: %v", err)
	}

	var n int
	switch *direction {
	case "up":
		n, err = runner.Up(ctx, *steps)
	case "down":
		n, err = runner.Down(ctx, *steps)
	default:
		log.Fatalf("Invalid direction: %s. Use 'up' or 'down'", *direction)
	}
	if err != nil {
		log.Fatalf("Failed to migrate %s: %v", *direction, err)
	}

	appLogger.Info("Migration completed",
		logger.Field{Key: "direction", Value: *direction},
		logger.Field{Key: "migrations", Value: n},
	)
}
