package api

import (
	"fmt"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/config"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/metrics"
	"infinite-experiment/airtrack/internal/providers"
	"infinite-experiment/airtrack/internal/query"
	"infinite-experiment/airtrack/internal/services"
)

type Services struct {
	Store    common.CacheInterface
	Queries  *query.Client
	Provider providers.FlightDataProvider
	Flights  *services.FlightsService
	Sessions *services.SessionService
}

type Dependencies struct {
	Config   *config.Config
	Metrics  *metrics.MetricsRegistry
	Services *Services
}

func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	store, err := NewQueryStore(cfg)
	if err != nil {
		return nil, err
	}

	queries := query.NewClient(store, query.Options{
		StaleTime: cfg.Query.StaleTime,
		GCTime:    cfg.Query.GCTime,
		Metrics:   metricsReg,
	})
	provider := providers.NewFlightRadarProvider(cfg.Upstream, metricsReg)
	flights := services.NewFlightsService(provider, queries)

	sessions := services.NewSessionService(
		flights,
		common.NewSessionTokenSigner(cfg.Session.Secret),
		cfg.Session.TTL,
		cfg.Session.TokenTTL,
		metricsReg,
	)

	return &Dependencies{
		Config:  cfg,
		Metrics: metricsReg,
		Services: &Services{
			Store:    store,
			Queries:  queries,
			Provider: provider,
			Flights:  flights,
			Sessions: sessions,
		},
	}, nil
}

// NewQueryStore opens the backing store for the query cache. Redis lets several
// replicas share resolved results; otherwise entries live in process memory.
func NewQueryStore(cfg *config.Config) (common.CacheInterface, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		client := common.NewRedisClient(cfg.Redis)
		store, err := common.NewRedisCacheService(client, "airtrack:query:")
		if err != nil {
			return nil, fmt.Errorf("redis query store: %w", err)
		}
		logging.Info("Query cache backed by Redis", "host", cfg.Redis.Host, "port", cfg.Redis.Port)
		return store, nil
	case config.CacheBackendMemory, "":
		return common.NewCacheService(cfg.Query.GCTime, cfg.Query.GCTime/2), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// Close releases sessions and the query store
func (d *Dependencies) Close() error {
	d.Services.Sessions.Close()
	return d.Services.Store.Close()
}
