package context

import (
	"context"

	"infinite-experiment/airtrack/internal/services"
)

type contextKey string

var (
	sessionKey   contextKey = "tracking_session"
	requestIDKey contextKey = "request_id"
)

func SetSession(ctx context.Context, session *services.TrackingSession) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func GetSession(ctx context.Context) *services.TrackingSession {
	if s, ok := ctx.Value(sessionKey).(*services.TrackingSession); ok {
		return s
	}
	return nil
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
