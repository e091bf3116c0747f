package workers

import (
	"context"
	"time"

	"infinite-experiment/airtrack/internal/common"
)

const storeCheckInterval = 30 * time.Second

type WorkersContainer struct {
	Refresher    *SessionRefresher
	StoreMonitor *StoreMonitor
}

// InitWorkers starts the background workers; they stop when ctx is cancelled.
func InitWorkers(ctx context.Context, sessions SessionSource, store common.CacheInterface, refreshInterval time.Duration) *WorkersContainer {
	refresher := NewSessionRefresher(sessions, refreshInterval)
	monitor := NewStoreMonitor(store)

	go refresher.Start(ctx)
	go monitor.Start(ctx, storeCheckInterval)

	return &WorkersContainer{
		Refresher:    refresher,
		StoreMonitor: monitor,
	}
}
