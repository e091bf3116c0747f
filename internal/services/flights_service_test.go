package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/airtrack/internal/providers"
	"infinite-experiment/airtrack/internal/providers/providertest"
	"infinite-experiment/airtrack/internal/query"
)

func TestFlightsService_SearchFlights_CoalescesAgainstUpstream(t *testing.T) {
	upstream := providertest.New(t)
	release := upstream.Hold()
	svc := NewFlightsService(providers.NewFlightRadarProvider(upstream.Config(), nil), newTestQueries(newFakeClock()))

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SearchFlights(context.Background(), "AF123")
		}(i)
	}

	require.Eventually(t, func() bool { return upstream.SearchCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), upstream.SearchCalls.Load())
}

func TestFlightsService_SearchFlights_BlankQueryIsDisabled(t *testing.T) {
	provider := stubProvider()
	svc := newTestFlights(provider, newFakeClock())

	_, err := svc.SearchFlights(context.Background(), "  ")

	assert.ErrorIs(t, err, query.ErrDisabled)
	assert.Equal(t, int32(0), provider.searchCalls.Load())
}

func TestFlightsService_SearchFlights_StaleRefetch(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	svc := newTestFlights(provider, clock)
	ctx := context.Background()

	_, err := svc.SearchFlights(ctx, "AF123")
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	_, err = svc.SearchFlights(ctx, "AF123")
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.searchCalls.Load())

	clock.Advance(21 * time.Second)
	_, err = svc.SearchFlights(ctx, "AF123")
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.searchCalls.Load())
}

func TestFlightsService_FlightDetails_EvictedAfterRetention(t *testing.T) {
	clock := newFakeClock()
	provider := stubProvider()
	svc := newTestFlights(provider, clock)
	ctx := context.Background()

	_, err := svc.FlightDetails(ctx, "A1")
	require.NoError(t, err)

	clock.Advance(301 * time.Second)
	_, ok := svc.CachedDetail("A1")
	assert.False(t, ok)

	_, err = svc.FlightDetails(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.detailCalls.Load())
}

func TestFlightsService_NetworkError(t *testing.T) {
	upstream := providertest.New(t)
	upstream.SetSearch(http.StatusBadGateway, `bad gateway`)
	svc := NewFlightsService(providers.NewFlightRadarProvider(upstream.Config(), nil), newTestQueries(newFakeClock()))

	results, err := svc.SearchFlights(context.Background(), "AF123")

	assert.Nil(t, results)
	assert.True(t, providers.IsNetworkError(err))
	_, cached := svc.CachedSearch("AF123")
	assert.False(t, cached)
}

func TestFlightsService_MapView(t *testing.T) {
	upstream := providertest.New(t)
	svc := NewFlightsService(providers.NewFlightRadarProvider(upstream.Config(), nil), newTestQueries(newFakeClock()))

	view, err := svc.MapView(context.Background(), "A1")
	require.NoError(t, err)

	assert.Equal(t, 1.0, view.Region.Latitude)
	require.Len(t, view.Path, 2)
	assert.Equal(t, 2.0, view.Path[1].Latitude)
}
