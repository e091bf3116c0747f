package workers

import (
	"context"
	"time"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/logging"
)

// StoreMonitor pings the query cache backend and logs when it stops or
// resumes answering.
type StoreMonitor struct {
	store   common.CacheInterface
	healthy bool
}

func NewStoreMonitor(store common.CacheInterface) *StoreMonitor {
	return &StoreMonitor{store: store, healthy: true}
}

// Start begins monitoring the store
func (m *StoreMonitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check pings once and reports whether the store answered
func (m *StoreMonitor) Check() bool {
	err := m.store.Ping()
	switch {
	case err != nil && m.healthy:
		logging.Error("Query cache backend unreachable", "error", err.Error())
	case err == nil && !m.healthy:
		logging.Info("Query cache backend reachable again")
	}
	m.healthy = err == nil
	return m.healthy
}
