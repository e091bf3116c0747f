package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/metrics"
	"infinite-experiment/airtrack/internal/models/dtos"
)

// SessionService keeps tracking sessions in memory. A session idle for longer
// than the TTL is evicted and closed.
type SessionService struct {
	flights  *FlightsService
	signer   *common.SessionTokenSigner
	sessions *cache.Cache
	tokenTTL time.Duration
	metrics  *metrics.MetricsRegistry
}

func NewSessionService(
	flights *FlightsService,
	signer *common.SessionTokenSigner,
	idleTTL, tokenTTL time.Duration,
	reg *metrics.MetricsRegistry,
) *SessionService {
	cleanup := idleTTL / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	svc := &SessionService{
		flights:  flights,
		signer:   signer,
		sessions: cache.New(idleTTL, cleanup),
		tokenTTL: tokenTTL,
		metrics:  reg,
	}
	svc.sessions.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*TrackingSession); ok && s.shutdown() {
			reg.SessionClosed()
			logging.Info("Tracking session closed", "session_id", id)
		}
	})
	return svc
}

// Create opens a session and issues its bearer token.
func (svc *SessionService) Create() (*TrackingSession, *dtos.SessionCreatedResponse, error) {
	id := uuid.New().String()

	token, expiresAt, err := svc.signer.Issue(id, svc.tokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session token: %w", err)
	}

	session := NewTrackingSession(id, svc.flights, svc.metrics)
	svc.sessions.SetDefault(id, session)
	svc.metrics.SessionOpened()
	logging.Info("Tracking session opened", "session_id", id)

	return session, &dtos.SessionCreatedResponse{
		SessionID: id,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Get returns a live session and extends its idle timeout.
func (svc *SessionService) Get(id string) (*TrackingSession, error) {
	v, found := svc.sessions.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	session, ok := v.(*TrackingSession)
	if !ok || session.Closed() {
		svc.sessions.Delete(id)
		return nil, ErrSessionNotFound
	}
	svc.sessions.SetDefault(id, session)

	// Eviction may have closed it between the check and SetDefault.
	if session.Closed() {
		svc.sessions.Delete(id)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Authenticate resolves a bearer token to its live session.
func (svc *SessionService) Authenticate(token string) (*TrackingSession, error) {
	claims, err := svc.signer.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return svc.Get(claims.SessionID)
}

func (svc *SessionService) Delete(id string) {
	svc.sessions.Delete(id)
}

// Sessions returns every unexpired session.
func (svc *SessionService) Sessions() []*TrackingSession {
	items := svc.sessions.Items()
	out := make([]*TrackingSession, 0, len(items))
	for _, item := range items {
		if s, ok := item.Object.(*TrackingSession); ok {
			out = append(out, s)
		}
	}
	return out
}

func (svc *SessionService) Count() int {
	return svc.sessions.ItemCount()
}

// Close ends every session.
func (svc *SessionService) Close() {
	for id := range svc.sessions.Items() {
		svc.sessions.Delete(id)
	}
}
