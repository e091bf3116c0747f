package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/airtrack/internal/constants"
	"infinite-experiment/airtrack/internal/metrics"
	"infinite-experiment/airtrack/internal/models/dtos"
	"infinite-experiment/airtrack/internal/providers"
	"infinite-experiment/airtrack/internal/query"
)

func newTestSession(t *testing.T, provider *mockFlightProvider, clock *fakeClock, reg *metrics.MetricsRegistry) *TrackingSession {
	t.Helper()
	s := NewTrackingSession("session-1", newTestFlights(provider, clock), reg)
	t.Cleanup(s.Close)
	return s
}

func TestTrackingSession_SearchThenSelect(t *testing.T) {
	provider := stubProvider()
	s := newTestSession(t, provider, newFakeClock(), nil)

	require.NoError(t, s.Search(" AF123 "))
	s.Wait()

	state := s.Snapshot()
	assert.Equal(t, "AF123", state.Search.Query)
	assert.False(t, state.Search.Loading)
	assert.False(t, state.Search.Failed)
	require.Len(t, state.Search.Results, 3)

	require.NoError(t, s.Select("A1"))
	s.Wait()

	state = s.Snapshot()
	assert.Equal(t, "A1", state.Selected)
	assert.False(t, state.Detail.Loading)
	require.NotNil(t, state.Detail.Detail)
	assert.Equal(t, "A1", state.Detail.Detail.Identification.ID)
	require.NotNil(t, state.Map)
	assert.Equal(t, 1.0, state.Map.Region.Latitude)
}

func TestTrackingSession_BlankSearchIsIgnored(t *testing.T) {
	provider := stubProvider()
	s := newTestSession(t, provider, newFakeClock(), nil)

	err := s.Search("   ")

	assert.ErrorIs(t, err, query.ErrDisabled)
	assert.Equal(t, uint64(0), s.Snapshot().Version)
	assert.Equal(t, int32(0), provider.searchCalls.Load())
}

func TestTrackingSession_NonSelectableNeverResolvesDetail(t *testing.T) {
	provider := stubProvider()
	s := newTestSession(t, provider, newFakeClock(), nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()

	assert.ErrorIs(t, s.Select("AFR"), ErrNotSelectable)
	assert.ErrorIs(t, s.Select("nope"), ErrUnknownFlight)
	s.Wait()

	assert.Equal(t, int32(0), provider.detailCalls.Load())
	assert.Empty(t, s.Snapshot().Selected)
}

func TestTrackingSession_SelectBeforeResultsIsUnknown(t *testing.T) {
	provider := stubProvider()
	s := newTestSession(t, provider, newFakeClock(), nil)

	assert.ErrorIs(t, s.Select("A1"), ErrUnknownFlight)
	assert.Equal(t, int32(0), provider.detailCalls.Load())
}

func TestTrackingSession_SearchFailureSetsFlag(t *testing.T) {
	provider := stubProvider()
	provider.searchFunc = func(ctx context.Context, q string) ([]dtos.FlightSummary, error) {
		return nil, &providers.ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    constants.GetErrorMessage(constants.ErrCodeNetworkError),
			StatusCode: 500,
		}
	}
	s := newTestSession(t, provider, newFakeClock(), nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()

	state := s.Snapshot()
	assert.True(t, state.Search.Failed)
	assert.False(t, state.Search.Loading)
	assert.Empty(t, state.Search.Results)
	assert.Equal(t, constants.ErrCodeNetworkError, state.Search.ErrorCode)
}

func TestTrackingSession_RefreshDoesNotRetryFailedFetch(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	provider.searchFunc = func(ctx context.Context, q string) ([]dtos.FlightSummary, error) {
		return nil, &providers.ProviderError{Code: constants.ErrCodeNetworkError, StatusCode: 500}
	}
	provider.detailFunc = func(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
		return nil, errors.New("down")
	}
	s := newTestSession(t, provider, clock, nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()
	require.True(t, s.Snapshot().Search.Failed)

	for i := 0; i < 2; i++ {
		clock.Advance(31 * time.Second)
		s.Refresh()
		s.Wait()
	}

	assert.Equal(t, int32(1), provider.searchCalls.Load())
	assert.True(t, s.Snapshot().Search.Failed)
}

func TestTrackingSession_RefreshDoesNotRetryFailedDetail(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	provider.detailFunc = func(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
		return nil, errors.New("down")
	}
	s := newTestSession(t, provider, clock, nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()
	require.NoError(t, s.Select("A1"))
	s.Wait()
	require.True(t, s.Snapshot().Detail.Failed)

	clock.Advance(10 * time.Second)
	s.Refresh()
	s.Wait()

	assert.Equal(t, int32(1), provider.detailCalls.Load())
	assert.Equal(t, int32(1), provider.searchCalls.Load())
}

func TestTrackingSession_SchemaErrorOnDetail(t *testing.T) {
	provider := stubProvider()
	provider.detailFunc = func(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
		return nil, &providers.SchemaError{Resource: "detail", Fields: []string{"airline"}}
	}
	s := newTestSession(t, provider, newFakeClock(), nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()
	require.NoError(t, s.Select("L9"))
	s.Wait()

	state := s.Snapshot()
	assert.True(t, state.Detail.Failed)
	assert.Nil(t, state.Detail.Detail)
	assert.Nil(t, state.Map)
	assert.Equal(t, constants.ErrCodeSchemaMismatch, state.Detail.ErrorCode)
}

func TestTrackingSession_SupersededSearchIsDiscarded(t *testing.T) {
	reg := metrics.NewMetricsRegistryWith(prometheus.NewRegistry())
	gate := make(chan struct{})
	provider := stubProvider()
	provider.searchFunc = func(ctx context.Context, q string) ([]dtos.FlightSummary, error) {
		if q == "slow" {
			<-gate
			return []dtos.FlightSummary{{ID: "S1", Label: "slow", Type: dtos.FlightTypeLive}}, nil
		}
		return []dtos.FlightSummary{{ID: "F1", Label: "fast", Type: dtos.FlightTypeLive}}, nil
	}
	s := newTestSession(t, provider, newFakeClock(), reg)

	require.NoError(t, s.Search("slow"))
	require.NoError(t, s.Search("fast"))

	require.Eventually(t, func() bool {
		st := s.Snapshot()
		return len(st.Search.Results) == 1 && st.Search.Results[0].ID == "F1"
	}, time.Second, 5*time.Millisecond)

	close(gate)
	s.Wait()

	state := s.Snapshot()
	assert.Equal(t, "fast", state.Search.Query)
	require.Len(t, state.Search.Results, 1)
	assert.Equal(t, "F1", state.Search.Results[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.SupersededResultsTotal.WithLabelValues("search")))
}

func TestTrackingSession_SupersededSelectionIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	provider := stubProvider()
	provider.detailFunc = func(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
		if flightID == "A1" {
			<-gate
		}
		return sampleDetail(flightID, dtos.TrailPoint{Lat: 5, Lng: 5}), nil
	}
	s := newTestSession(t, provider, newFakeClock(), nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()

	require.NoError(t, s.Select("A1"))
	require.NoError(t, s.Select("L9"))

	require.Eventually(t, func() bool {
		return s.Snapshot().Detail.Detail != nil
	}, time.Second, 5*time.Millisecond)

	close(gate)
	s.Wait()

	state := s.Snapshot()
	assert.Equal(t, "L9", state.Selected)
	assert.Equal(t, "L9", state.Detail.Detail.Identification.ID)
	assert.Equal(t, "L9", state.Map.FlightID)
}

func TestTrackingSession_NewSearchClearsSelection(t *testing.T) {
	provider := stubProvider()
	s := newTestSession(t, provider, newFakeClock(), nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()
	require.NoError(t, s.Select("A1"))
	s.Wait()

	require.NoError(t, s.Search("BA456"))
	state := s.Snapshot()
	assert.Empty(t, state.Selected)
	assert.Nil(t, state.Detail.Detail)
	assert.Nil(t, state.Map)
	s.Wait()
}

func TestTrackingSession_ClearSelection(t *testing.T) {
	s := newTestSession(t, stubProvider(), newFakeClock(), nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()
	require.NoError(t, s.Select("L9"))
	s.Wait()

	s.ClearSelection()
	state := s.Snapshot()
	assert.Empty(t, state.Selected)
	assert.Nil(t, state.Map)
	assert.Equal(t, 3, len(state.Search.Results))
}

func TestTrackingSession_FreshCacheSkipsResolver(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	flights := newTestFlights(provider, clock)

	first := NewTrackingSession("a", flights, nil)
	defer first.Close()
	second := NewTrackingSession("b", flights, nil)
	defer second.Close()

	require.NoError(t, first.Search("AF123"))
	first.Wait()

	clock.Advance(10 * time.Second)
	require.NoError(t, second.Search("AF123"))

	state := second.Snapshot()
	assert.False(t, state.Search.Loading)
	assert.Len(t, state.Search.Results, 3)
	assert.Equal(t, int32(1), provider.searchCalls.Load())
}

func TestTrackingSession_RefreshRefetchesStaleKeepingPrevious(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	s := newTestSession(t, provider, clock, nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()
	require.NoError(t, s.Select("A1"))
	s.Wait()

	s.Refresh()
	s.Wait()
	assert.Equal(t, int32(1), provider.searchCalls.Load())
	assert.Equal(t, int32(1), provider.detailCalls.Load())

	gate := make(chan struct{})
	provider.detailFunc = func(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
		<-gate
		return sampleDetail(flightID, dtos.TrailPoint{Lat: 9, Lng: 9}), nil
	}

	clock.Advance(31 * time.Second)
	s.Refresh()

	during := s.Snapshot()
	require.NotNil(t, during.Map)
	assert.Equal(t, 1.0, during.Map.Region.Latitude)

	close(gate)
	s.Wait()

	after := s.Snapshot()
	assert.Equal(t, int32(2), provider.searchCalls.Load())
	assert.Equal(t, int32(2), provider.detailCalls.Load())
	assert.Equal(t, 9.0, after.Map.Region.Latitude)
}

func TestTrackingSession_RefreshFailureKeepsPrevious(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	s := newTestSession(t, provider, clock, nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()

	provider.searchFunc = func(ctx context.Context, q string) ([]dtos.FlightSummary, error) {
		return nil, errors.New("down")
	}
	clock.Advance(31 * time.Second)
	s.Refresh()
	s.Wait()

	state := s.Snapshot()
	assert.True(t, state.Search.Failed)
	assert.Len(t, state.Search.Results, 3)
}

func TestTrackingSession_ObservedEntriesOutliveRetention(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	s := newTestSession(t, provider, clock, nil)

	require.NoError(t, s.Search("AF123"))
	s.Wait()

	clock.Advance(10 * time.Minute)
	_, ok := s.flights.CachedSearch("AF123")
	assert.True(t, ok)

	s.Close()
	assert.Equal(t, 0, s.flights.Queries.Observers(query.SearchKey("AF123")))

	clock.Advance(5 * time.Minute)
	_, ok = s.flights.CachedSearch("AF123")
	assert.False(t, ok)
}

func TestTrackingSession_Subscribe(t *testing.T) {
	s := newTestSession(t, stubProvider(), newFakeClock(), nil)

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	initial := <-updates
	assert.Equal(t, uint64(0), initial.Version)

	require.NoError(t, s.Search("AF123"))
	s.Wait()

	var latest SessionState
	require.Eventually(t, func() bool {
		select {
		case latest = <-updates:
		default:
		}
		return len(latest.Search.Results) == 3
	}, time.Second, 5*time.Millisecond)
	assert.False(t, latest.Search.Loading)

	s.Close()
	for range updates {
	}
}

func TestTrackingSession_ClosedRejectsInput(t *testing.T) {
	s := newTestSession(t, stubProvider(), newFakeClock(), nil)
	s.Close()

	assert.ErrorIs(t, s.Search("AF123"), ErrSessionClosed)
	assert.ErrorIs(t, s.Select("A1"), ErrSessionClosed)
	assert.True(t, s.Closed())

	updates, _ := s.Subscribe()
	_, open := <-updates
	assert.False(t, open)
}
