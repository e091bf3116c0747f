package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infinite-experiment/airtrack/internal/api"
	"infinite-experiment/airtrack/internal/config"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/metrics"
	"infinite-experiment/airtrack/internal/routes"
	"infinite-experiment/airtrack/internal/workers"
)

// @title AirTrack API
// @version 1.0
// @description Flight search and live tracking backend for map clients.
// @host localhost:8080
// @BasePath /
func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("AirTrack starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if cfg.Upstream.APIKey == "" {
		logging.Warn("RAPID_API_KEY is not set; flight data requests will be rejected upstream")
	}
	if len(cfg.Session.Secret) == 0 {
		cfg.Session.Secret = make([]byte, 32)
		if _, err := rand.Read(cfg.Session.Secret); err != nil {
			logging.Fatal("Failed to generate session secret", "error", err.Error())
		}
		logging.Warn("SESSION_SECRET is not set; session tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsReg := metrics.NewMetricsRegistry()

	deps, err := api.InitDependencies(cfg, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}
	defer deps.Close()

	workers.InitWorkers(ctx, deps.Services.Sessions, deps.Services.Store, cfg.Query.StaleTime)

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logging.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server shutdown failed", "error", err.Error())
		}
	}()

	logging.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.AppEnv,
		"cache_backend", cfg.CacheBackend,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Server failed", "error", err.Error())
	}
}
