package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestClient(clock *fakeClock, reg *metrics.MetricsRegistry) *Client {
	return NewClient(common.NewCacheService(time.Hour, time.Hour), Options{
		StaleTime: 30 * time.Second,
		GCTime:    5 * time.Minute,
		Now:       clock.Now,
		Metrics:   reg,
	})
}

// counter returns a fetcher that counts invocations and returns its count.
func counter(calls *atomic.Int32) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) {
		n := calls.Add(1)
		return []string{"call", string(rune('0' + n))}, nil
	}
}

func TestFetch_DisabledKeyNeverCallsFetcher(t *testing.T) {
	c := newTestClient(newFakeClock(), nil)
	var calls atomic.Int32

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := Fetch(context.Background(), c, SearchKey(q), counter(&calls))
		assert.ErrorIs(t, err, ErrDisabled)
	}
	_, err := Fetch(context.Background(), c, DetailKey(""), counter(&calls))
	assert.ErrorIs(t, err, ErrDisabled)

	assert.Equal(t, int32(0), calls.Load())
}

func TestFetch_StaleTime(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock, nil)
	var calls atomic.Int32
	key := SearchKey("AF123")

	first, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	second, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)

	clock.Advance(21 * time.Second)
	third, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.NotEqual(t, first, third)
}

func TestFetch_SearchKeyTrimsQuery(t *testing.T) {
	c := newTestClient(newFakeClock(), nil)
	var calls atomic.Int32

	_, err := Fetch(context.Background(), c, SearchKey("AF123"), counter(&calls))
	require.NoError(t, err)
	_, err = Fetch(context.Background(), c, SearchKey("  AF123 "), counter(&calls))
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_CoalescesConcurrentCalls(t *testing.T) {
	c := newTestClient(newFakeClock(), nil)
	var calls atomic.Int32
	gate := make(chan struct{})

	fetch := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-gate
		return []string{"A1"}, nil
	}

	const n = 20
	var wg sync.WaitGroup
	results := make([][]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Fetch(context.Background(), c, SearchKey("AF123"), fetch)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{"A1"}, results[i])
	}
}

// stallingStore returns the result of its first Get only after resume is closed.
type stallingStore struct {
	common.CacheInterface
	gets    atomic.Int32
	stalled chan struct{}
	resume  chan struct{}
}

func (s *stallingStore) Get(key string) ([]byte, bool) {
	v, ok := s.CacheInterface.Get(key)
	if s.gets.Add(1) == 1 {
		close(s.stalled)
		<-s.resume
	}
	return v, ok
}

func TestFetch_LateCallerReusesValueStoredAfterItsLookup(t *testing.T) {
	clock := newFakeClock()
	store := &stallingStore{
		CacheInterface: common.NewCacheService(time.Hour, time.Hour),
		stalled:        make(chan struct{}),
		resume:         make(chan struct{}),
	}
	c := NewClient(store, Options{StaleTime: 30 * time.Second, GCTime: 5 * time.Minute, Now: clock.Now})
	var calls atomic.Int32
	key := SearchKey("AF123")

	late := make(chan []string, 1)
	go func() {
		v, err := Fetch(context.Background(), c, key, counter(&calls))
		assert.NoError(t, err)
		late <- v
	}()
	<-store.stalled

	first, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)

	close(store.resume)
	second := <-late

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)
}

func TestFetch_CoalescedFailureReachesEveryCaller(t *testing.T) {
	c := newTestClient(newFakeClock(), nil)
	var calls atomic.Int32
	gate := make(chan struct{})
	boom := errors.New("boom")

	fetch := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-gate
		return nil, boom
	}

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = Fetch(context.Background(), c, DetailKey("A1"), fetch)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestFetch_CallerCanAbandonSharedCall(t *testing.T) {
	c := newTestClient(newFakeClock(), nil)
	gate := make(chan struct{})
	done := make(chan struct{})

	fetch := func(ctx context.Context) ([]string, error) {
		defer close(done)
		<-gate
		return []string{"A1"}, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, SearchKey("AF123"), fetch)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(gate)
	<-done

	require.Eventually(t, func() bool {
		_, ok := Peek[[]string](c, SearchKey("AF123"))
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestFetch_FailureKeepsPreviousValue(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock, nil)
	key := DetailKey("A1")

	_, err := Fetch(context.Background(), c, key, func(context.Context) ([]string, error) {
		return []string{"v1"}, nil
	})
	require.NoError(t, err)

	clock.Advance(31 * time.Second)
	_, err = Fetch(context.Background(), c, key, func(context.Context) ([]string, error) {
		return nil, errors.New("upstream down")
	})
	require.Error(t, err)

	cached, ok := Peek[[]string](c, key)
	require.True(t, ok)
	assert.Equal(t, []string{"v1"}, cached.Data)
	assert.False(t, cached.Fresh)
}

func TestFetch_EvictsUnobservedEntryAfterGCTime(t *testing.T) {
	clock := newFakeClock()
	reg := metrics.NewMetricsRegistryWith(prometheus.NewRegistry())
	c := newTestClient(clock, reg)
	var calls atomic.Int32
	key := DetailKey("A1")

	_, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)

	clock.Advance(299 * time.Second)
	_, ok := Peek[[]string](c, key)
	assert.True(t, ok, "still retained before the window elapses")

	clock.Advance(2 * time.Second)
	_, ok = Peek[[]string](c, key)
	assert.False(t, ok, "evicted at t=301s")

	_, err = Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CacheEvictionsTotal.WithLabelValues("detail")))
}

func TestObserve_RetainsEntryUntilReleased(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock, nil)
	key := DetailKey("A1")

	release := c.Observe(key)
	assert.Equal(t, 1, c.Observers(key))

	_, err := Fetch(context.Background(), c, key, func(context.Context) ([]string, error) {
		return []string{"v1"}, nil
	})
	require.NoError(t, err)

	clock.Advance(301 * time.Second)
	cached, ok := Peek[[]string](c, key)
	require.True(t, ok)
	assert.False(t, cached.Fresh)

	release()
	release()
	assert.Equal(t, 0, c.Observers(key))

	clock.Advance(299 * time.Second)
	_, ok = Peek[[]string](c, key)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = Peek[[]string](c, key)
	assert.False(t, ok)
}

func TestObserve_MultipleObservers(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock, nil)
	key := SearchKey("AF123")

	_, err := Fetch(context.Background(), c, key, func(context.Context) ([]string, error) {
		return []string{"A1"}, nil
	})
	require.NoError(t, err)

	releaseA := c.Observe(key)
	releaseB := c.Observe(key)
	releaseA()

	clock.Advance(10 * time.Minute)
	_, ok := Peek[[]string](c, key)
	assert.True(t, ok)

	releaseB()
	clock.Advance(5 * time.Minute)
	_, ok = Peek[[]string](c, key)
	assert.False(t, ok)
}

func TestObserve_DisabledKeyIsNoop(t *testing.T) {
	c := newTestClient(newFakeClock(), nil)
	release := c.Observe(SearchKey("  "))
	release()
	assert.Equal(t, 0, c.Observers(SearchKey("")))
}

func TestFetch_RecordsHitsAndMisses(t *testing.T) {
	reg := metrics.NewMetricsRegistryWith(prometheus.NewRegistry())
	c := newTestClient(newFakeClock(), reg)
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		_, err := Fetch(context.Background(), c, SearchKey("AF123"), counter(&calls))
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CacheMissesTotal.WithLabelValues("search")))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.CacheHitsTotal.WithLabelValues("search")))
}

func TestInvalidate(t *testing.T) {
	c := newTestClient(newFakeClock(), nil)
	var calls atomic.Int32
	key := SearchKey("AF123")

	_, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	c.Invalidate(key)
	_, err = Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}
