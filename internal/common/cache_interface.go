package common

import "time"

// CacheInterface is the byte-level store behind the query cache.
// Values are encoded by the caller so every backend holds immutable copies.
type CacheInterface interface {
	// Set stores a value with the given time to live; a duration <= 0 never expires
	Set(key string, value []byte, duration time.Duration)

	// Get retrieves a value by key
	// Returns the value and true if found, nil and false otherwise
	Get(key string) ([]byte, bool)

	// Delete removes a value from cache by key
	Delete(key string)

	// Ping reports whether the backend is reachable
	Ping() error

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
