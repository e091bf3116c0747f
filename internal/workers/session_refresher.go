package workers

import (
	"context"
	"time"

	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/services"
)

// SessionSource lists the sessions the refresher keeps current
type SessionSource interface {
	Sessions() []*services.TrackingSession
}

// SessionRefresher periodically re-reads the active search and selection of
// every live session so subscribers see updated positions.
type SessionRefresher struct {
	sessions SessionSource
	interval time.Duration
}

func NewSessionRefresher(sessions SessionSource, interval time.Duration) *SessionRefresher {
	return &SessionRefresher{
		sessions: sessions,
		interval: interval,
	}
}

// Start runs until ctx is cancelled
func (r *SessionRefresher) Start(ctx context.Context) {
	logging.Info("Session refresher started", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("Session refresher shutting down")
			return
		case <-ticker.C:
			r.RefreshAll()
		}
	}
}

// RefreshAll refreshes every live session once and returns how many were visited
func (r *SessionRefresher) RefreshAll() int {
	sessions := r.sessions.Sessions()
	for _, s := range sessions {
		s.Refresh()
	}
	if len(sessions) > 0 {
		logging.Debug("Refreshed tracking sessions", "count", len(sessions))
	}
	return len(sessions)
}
