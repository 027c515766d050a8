package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/apparelstore/internal/catalogclient"
	"github.com/utafrali/apparelstore/internal/export"
	"github.com/utafrali/apparelstore/pkg/httpclient"
	"github.com/utafrali/apparelstore/pkg/logger"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "storefront base URL")
		output   = flag.String("out", "catalog.xlsx", "output workbook path")
		category = flag.String("category", "", "only export this category")
		search   = flag.String("search", "", "only export products matching this term")
		sort     = flag.String("sort", "", "sort order: latest, price-low or price-high")
		limit    = flag.Int("limit", 0, "maximum number of products (0 for all)")
		timeout  = flag.Duration("timeout", 30*time.Second, "request timeout")
		level    = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log := logger.New("catalog-export", *level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = *timeout
	doer := httpclient.NewCircuitBreakerClient(httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("storefront"), log)

	client := catalogclient.New(doer, *baseURL, log)
	products, err := client.Fetch(ctx, catalogclient.Query{
		Category: *category,
		Search:   *search,
		Sort:     *sort,
		Limit:    *limit,
	})
	if err != nil {
		log.Error("failed to fetch catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := export.Save(*output, products); err != nil {
		log.Error("failed to write workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("catalog exported",
		slog.String("path", *output),
		slog.Int("products", len(products)),
	)
}
