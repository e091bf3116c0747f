// Package config provides application configuration from environment variables
package config

import (
	"os"
	"strconv"
	"time"

	"infinite-experiment/airtrack/internal/constants"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	AppEnv string
	Port   string

	Upstream UpstreamConfig
	Query    QueryConfig
	Redis    RedisConfig
	Session  SessionConfig

	CacheBackend string
}

// UpstreamConfig describes the third-party flight data API
type UpstreamConfig struct {
	BaseURL string
	Host    string
	APIKey  string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// QueryConfig holds the cache freshness and retention windows
type QueryConfig struct {
	StaleTime time.Duration
	GCTime    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// SessionConfig controls tracking sessions. TTL is the idle timeout; TokenTTL bounds a bearer token.
type SessionConfig struct {
	Secret   []byte
	TTL      time.Duration
	TokenTTL time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	host := getEnv("RAPID_API_HOST", "flight-radar1.p.rapidapi.com")

	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		Upstream: UpstreamConfig{
			BaseURL: getEnv("FLIGHT_API_BASE_URL", "https://"+host),
			Host:    host,
			APIKey:  os.Getenv("RAPID_API_KEY"),
			Timeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
			RPS:     getEnvFloat("UPSTREAM_RPS", 5),
			Burst:   getEnvInt("UPSTREAM_BURST", 5),
		},
		Query: QueryConfig{
			StaleTime: time.Duration(getEnvInt("QUERY_STALE_MS", int(constants.DefaultStaleTime/time.Millisecond))) * time.Millisecond,
			GCTime:    time.Duration(getEnvInt("QUERY_GC_MS", int(constants.DefaultGCTime/time.Millisecond))) * time.Millisecond,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Session: SessionConfig{
			Secret:   []byte(os.Getenv("SESSION_SECRET")),
			TTL:      time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			TokenTTL: time.Duration(getEnvInt("SESSION_TOKEN_TTL_HOURS", 24)) * time.Hour,
		},
		CacheBackend: getEnv("CACHE_BACKEND", CacheBackendMemory),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
