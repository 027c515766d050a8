package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/apparelstore/internal/config"
	"github.com/utafrali/apparelstore/internal/repository/postgres"
	"github.com/utafrali/apparelstore/internal/seed"
	"github.com/utafrali/apparelstore/migrations"
	"github.com/utafrali/apparelstore/pkg/database"
	"github.com/utafrali/apparelstore/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	var (
		count   = flag.Int("count", 200, "number of products to generate")
		rngSeed = flag.Uint64("seed", 42, "random seed; the same seed yields the same catalog")
		drafts  = flag.Float64("drafts", 0.05, "share of products created as drafts")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New("seed", cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	products := seed.Generate(seed.Options{
		Count:        *count,
		Seed:         *rngSeed,
		DraftRatio:   *drafts,
		ImageBaseURL: cfg.StorageBaseURL,
	})
	res, err := seed.Load(ctx, postgres.NewProductRepository(pool), products, log)
	if err != nil {
		return err
	}

	log.Info("catalog seeded",
		slog.Int("created", res.Created),
		slog.Int("skipped", res.Skipped),
	)
	return nil
}
