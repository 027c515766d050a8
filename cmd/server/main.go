package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/apparelstore/internal/app"
	"github.com/utafrali/apparelstore/internal/config"
	"github.com/utafrali/apparelstore/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("apparel storefront exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(config.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting apparel storefront",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("storage_backend", cfg.StorageBackend),
		slog.Bool("kafka_enabled", cfg.KafkaEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := application.Run(ctx); err != nil {
		return err
	}

	log.Info("apparel storefront stopped")
	return nil
}
