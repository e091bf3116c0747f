package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"infinite-experiment/airtrack/internal/constants"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/metrics"
	"infinite-experiment/airtrack/internal/models/dtos"
	"infinite-experiment/airtrack/internal/query"
)

type SearchState struct {
	Query     string               `json:"query"`
	Results   []dtos.FlightSummary `json:"results"`
	Loading   bool                 `json:"loading"`
	Failed    bool                 `json:"failed"`
	ErrorCode string               `json:"error_code,omitempty"`
}

type DetailState struct {
	FlightID  string             `json:"flight_id,omitempty"`
	Detail    *dtos.FlightDetail `json:"detail,omitempty"`
	Loading   bool               `json:"loading"`
	Failed    bool               `json:"failed"`
	ErrorCode string             `json:"error_code,omitempty"`
}

// SessionState is a read-only projection of one tracking session.
type SessionState struct {
	SessionID string        `json:"session_id"`
	Search    SearchState   `json:"search"`
	Selected  string        `json:"selected,omitempty"`
	Detail    DetailState   `json:"detail"`
	Map       *dtos.MapView `json:"map,omitempty"`
	Version   uint64        `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TrackingSession owns the search input and the selected flight for one client.
// Every resolver result is tagged with the generation of the input it was
// dispatched for and dropped if that input has since changed.
type TrackingSession struct {
	ID string

	flights *FlightsService
	metrics *metrics.MetricsRegistry
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu            sync.Mutex
	state         SessionState
	searchGen     uint64
	detailGen     uint64
	releaseSearch func()
	releaseDetail func()
	subscribers   map[int]chan SessionState
	nextSub       int
	closed        bool
}

func NewTrackingSession(id string, flights *FlightsService, reg *metrics.MetricsRegistry) *TrackingSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &TrackingSession{
		ID:            id,
		flights:       flights,
		metrics:       reg,
		ctx:           ctx,
		cancel:        cancel,
		state:         SessionState{SessionID: id, UpdatedAt: time.Now()},
		releaseSearch: func() {},
		releaseDetail: func() {},
		subscribers:   make(map[int]chan SessionState),
	}
}

// Search replaces the active query and clears the selection. A blank query is
// ignored and returns query.ErrDisabled.
func (s *TrackingSession) Search(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return query.ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	s.searchGen++
	gen := s.searchGen
	key := query.SearchKey(q)
	s.releaseSearch()
	s.releaseSearch = s.flights.Queries.Observe(key)
	s.clearSelectionLocked()

	s.state.Search = SearchState{Query: q, Loading: true}
	fresh := false
	if cached, ok := s.flights.CachedSearch(q); ok {
		s.state.Search.Results = cached.Data
		fresh = cached.Fresh
	}
	if fresh {
		s.state.Search.Loading = false
	} else {
		s.resolveSearch(gen, q, false)
	}
	s.publishLocked()
	return nil
}

// Select makes flightID the tracked flight. It must be a selectable row of the
// current results; otherwise the detail resolver is not invoked.
func (s *TrackingSession) Select(flightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	var row *dtos.FlightSummary
	for i := range s.state.Search.Results {
		if s.state.Search.Results[i].ID == flightID {
			row = &s.state.Search.Results[i]
			break
		}
	}
	if row == nil {
		return ErrUnknownFlight
	}
	if !row.Selectable() {
		return ErrNotSelectable
	}

	s.detailGen++
	gen := s.detailGen
	s.releaseDetail()
	s.releaseDetail = s.flights.Queries.Observe(query.DetailKey(flightID))

	s.state.Selected = flightID
	s.state.Detail = DetailState{FlightID: flightID, Loading: true}
	s.state.Map = nil

	fresh := false
	if cached, ok := s.flights.CachedDetail(flightID); ok {
		s.setDetailLocked(cached.Data)
		fresh = cached.Fresh
	}
	if fresh {
		s.state.Detail.Loading = false
	} else {
		s.resolveDetail(gen, flightID, false)
	}
	s.publishLocked()
	return nil
}

func (s *TrackingSession) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.clearSelectionLocked()
	s.publishLocked()
}

// Refresh re-resolves the active search and selection if their cached values
// are stale. Current values stay visible until the new ones settle. Keys with
// nothing cached, such as a failed fetch, wait for the user to retry.
func (s *TrackingSession) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if q := s.state.Search.Query; q != "" && !s.state.Search.Loading {
		if cached, ok := s.flights.CachedSearch(q); ok && !cached.Fresh {
			s.resolveSearch(s.searchGen, q, true)
		}
	}
	if id := s.state.Selected; id != "" && !s.state.Detail.Loading {
		if cached, ok := s.flights.CachedDetail(id); ok && !cached.Fresh {
			s.resolveDetail(s.detailGen, id, true)
		}
	}
}

// Snapshot returns the current state.
func (s *TrackingSession) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that receives the current state and then every
// change. Slow readers only see the latest state.
func (s *TrackingSession) Subscribe() (<-chan SessionState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan SessionState, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- s.state

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Wait blocks until every dispatched resolver call has settled.
func (s *TrackingSession) Wait() {
	s.wg.Wait()
}

// Close discards in-flight results, releases cached entries and ends subscriptions.
func (s *TrackingSession) Close() {
	s.shutdown()
}

// shutdown closes the session and reports whether this call did it.
func (s *TrackingSession) shutdown() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.cancel()
	s.releaseSearch()
	s.releaseDetail()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()
	return true
}

func (s *TrackingSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// resolveSearch must be called with s.mu held.
func (s *TrackingSession) resolveSearch(gen uint64, q string, refresh bool) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		results, err := s.flights.SearchFlights(s.ctx, q)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || gen != s.searchGen {
			s.discard(constants.QueryTagSearch, q)
			return
		}

		s.state.Search.Loading = false
		switch {
		case err == nil:
			s.state.Search.Results = results
			s.state.Search.Failed = false
			s.state.Search.ErrorCode = ""
		case refresh:
			s.state.Search.Failed = true
			s.state.Search.ErrorCode = ErrorCode(err)
		default:
			s.state.Search.Results = nil
			s.state.Search.Failed = true
			s.state.Search.ErrorCode = ErrorCode(err)
		}
		s.publishLocked()
	}()
}

// resolveDetail must be called with s.mu held.
func (s *TrackingSession) resolveDetail(gen uint64, flightID string, refresh bool) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		detail, err := s.flights.FlightDetails(s.ctx, flightID)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || gen != s.detailGen {
			s.discard(constants.QueryTagDetail, flightID)
			return
		}

		s.state.Detail.Loading = false
		switch {
		case err == nil:
			s.setDetailLocked(detail)
			s.state.Detail.Failed = false
			s.state.Detail.ErrorCode = ""
		case refresh:
			s.state.Detail.Failed = true
			s.state.Detail.ErrorCode = ErrorCode(err)
		default:
			s.state.Detail.Detail = nil
			s.state.Map = nil
			s.state.Detail.Failed = true
			s.state.Detail.ErrorCode = ErrorCode(err)
		}
		s.publishLocked()
	}()
}

func (s *TrackingSession) discard(tag constants.QueryTag, param string) {
	s.metrics.ResultSuperseded(string(tag))
	logging.Debug("Discarding superseded result",
		"session_id", s.ID,
		"tag", string(tag),
		"param", param,
	)
}

func (s *TrackingSession) setDetailLocked(detail *dtos.FlightDetail) {
	s.state.Detail.Detail = detail
	view := BuildMapView(detail)
	s.state.Map = &view
}

func (s *TrackingSession) clearSelectionLocked() {
	s.detailGen++
	s.releaseDetail()
	s.releaseDetail = func() {}
	s.state.Selected = ""
	s.state.Detail = DetailState{}
	s.state.Map = nil
}

// publishLocked must be called with s.mu held.
func (s *TrackingSession) publishLocked() {
	s.state.Version++
	s.state.UpdatedAt = time.Now()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- s.state
	}
}
