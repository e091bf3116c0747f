package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"infinite-experiment/airtrack/internal/cli"
	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/config"
	"infinite-experiment/airtrack/internal/providers"
	"infinite-experiment/airtrack/internal/query"
	"infinite-experiment/airtrack/internal/services"
)

func main() {
	cfg := config.Load()
	cli.SetAPIKeyConfigured(cfg.Upstream.APIKey != "")

	store := common.NewCacheService(cfg.Query.GCTime, cfg.Query.GCTime/2)
	defer store.Close()

	queries := query.NewClient(store, query.Options{
		StaleTime: cfg.Query.StaleTime,
		GCTime:    cfg.Query.GCTime,
	})
	cli.SetFlightResolver(services.NewFlightsService(
		providers.NewFlightRadarProvider(cfg.Upstream, nil),
		queries,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
