package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grbod/shipdash/internal/domain"
)

// fakeFetcher returns scripted results and counts upstream calls.
type fakeFetcher struct {
	tag       domain.ProviderTag
	calls     int64
	shipments []domain.Shipment
	err       error
	mu        sync.Mutex
}

func (f *fakeFetcher) Name() domain.ProviderTag { return f.tag }

func (f *fakeFetcher) Fetch(ctx context.Context, q domain.Query) ([]domain.Shipment, error) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.shipments, nil
}

func (f *fakeFetcher) set(shipments []domain.Shipment, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shipments = shipments
	f.err = err
}

func testClock(start time.Time) (func() time.Time, func(time.Duration)) {
	var mu sync.Mutex
	current := start
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(d)
	}
	return now, advance
}

func shipments(ids ...string) []domain.Shipment {
	out := make([]domain.Shipment, len(ids))
	for i, id := range ids {
		out[i] = domain.Shipment{ID: id, Provider: domain.ProviderFreight}
	}
	return out
}

func TestGetOrFetchWithinTTLUsesCache(t *testing.T) {
	now, _ := testClock(time.Now())
	c := New(15*time.Minute, nil, WithClock(now))
	f := &fakeFetcher{tag: domain.ProviderFreight, shipments: shipments("a", "b")}

	q := domain.Query{}
	first, info := c.GetOrFetch(context.Background(), f, q)
	if info.State != domain.ProviderOK || info.FromCache {
		t.Fatalf("first call info = %+v, want fresh ok", info)
	}
	second, info := c.GetOrFetch(context.Background(), f, q)
	if !info.FromCache {
		t.Errorf("second call info = %+v, want cache hit", info)
	}

	if atomic.LoadInt64(&f.calls) != 1 {
		t.Errorf("upstream calls = %d, want 1 (two calls inside TTL)", f.calls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("shipment counts = %d, %d, want 2, 2", len(first), len(second))
	}
}

func TestGetOrFetchAfterTTLRefetches(t *testing.T) {
	now, advance := testClock(time.Now())
	c := New(15*time.Minute, nil, WithClock(now))
	f := &fakeFetcher{tag: domain.ProviderFreight, shipments: shipments("a")}

	q := domain.Query{}
	c.GetOrFetch(context.Background(), f, q)
	advance(16 * time.Minute)
	c.GetOrFetch(context.Background(), f, q)

	if atomic.LoadInt64(&f.calls) != 2 {
		t.Errorf("upstream calls = %d, want 2 (entry expired)", f.calls)
	}
}

func TestForceRefreshBypassesTTL(t *testing.T) {
	now, _ := testClock(time.Now())
	c := New(15*time.Minute, nil, WithClock(now))
	f := &fakeFetcher{tag: domain.ProviderFreight, shipments: shipments("a")}

	c.GetOrFetch(context.Background(), f, domain.Query{})
	c.GetOrFetch(context.Background(), f, domain.Query{ForceRefresh: true})

	if atomic.LoadInt64(&f.calls) != 2 {
		t.Errorf("upstream calls = %d, want 2 (force refresh bypasses TTL)", f.calls)
	}
}

func TestServeStaleOnError(t *testing.T) {
	now, advance := testClock(time.Now())
	c := New(15*time.Minute, nil, WithClock(now))
	f := &fakeFetcher{tag: domain.ProviderFreight, shipments: shipments("a", "b", "c")}

	q := domain.Query{}
	c.GetOrFetch(context.Background(), f, q)

	// Entry goes stale, then the refetch fails.
	advance(20 * time.Minute)
	f.set(nil, domain.ErrUnavailable(domain.ProviderFreight, "timeout"))

	got, info := c.GetOrFetch(context.Background(), f, q)
	if len(got) != 3 {
		t.Errorf("shipments = %d, want 3 stale records", len(got))
	}
	if info.State != domain.ProviderDegraded {
		t.Errorf("state = %v, want degraded", info.State)
	}
	if info.Err == nil {
		t.Error("expected last error recorded")
	}
	if !info.FromCache {
		t.Error("expected FromCache = true for stale serve")
	}
}

func TestFailureWithNoCacheIsFailedAndEmpty(t *testing.T) {
	c := New(15*time.Minute, nil)
	f := &fakeFetcher{
		tag: domain.ProviderParcel,
		err: domain.ErrUnavailable(domain.ProviderParcel, "connection refused"),
	}

	got, info := c.GetOrFetch(context.Background(), f, domain.Query{})
	if len(got) != 0 {
		t.Errorf("shipments = %d, want 0", len(got))
	}
	if info.State != domain.ProviderFailed {
		t.Errorf("state = %v, want failed", info.State)
	}
	if info.Err == nil {
		t.Error("expected error recorded")
	}
}

func TestFailedFetchDoesNotPoisonCache(t *testing.T) {
	now, _ := testClock(time.Now())
	c := New(15*time.Minute, nil, WithClock(now))
	f := &fakeFetcher{
		tag: domain.ProviderFreight,
		err: domain.ErrUnavailable(domain.ProviderFreight, "down"),
	}

	c.GetOrFetch(context.Background(), f, domain.Query{})

	// Provider recovers; the next call must fetch, not serve a cached failure.
	f.set(shipments("a"), nil)
	got, info := c.GetOrFetch(context.Background(), f, domain.Query{})
	if info.State != domain.ProviderOK || len(got) != 1 {
		t.Errorf("after recovery: state=%v shipments=%d, want ok/1", info.State, len(got))
	}
}

func TestDistinctQueriesUseDistinctEntries(t *testing.T) {
	c := New(15*time.Minute, nil)
	f := &fakeFetcher{tag: domain.ProviderFreight, shipments: shipments("a")}

	c.GetOrFetch(context.Background(), f, domain.Query{Statuses: []string{"picked-up"}})
	c.GetOrFetch(context.Background(), f, domain.Query{Statuses: []string{"pending"}})

	if atomic.LoadInt64(&f.calls) != 2 {
		t.Errorf("upstream calls = %d, want 2 (distinct cache keys)", f.calls)
	}
}

func TestInvalidateDropsProviderEntries(t *testing.T) {
	c := New(15*time.Minute, nil)
	f := &fakeFetcher{tag: domain.ProviderFreight, shipments: shipments("a")}

	c.GetOrFetch(context.Background(), f, domain.Query{})
	c.Invalidate(domain.ProviderFreight)
	c.GetOrFetch(context.Background(), f, domain.Query{})

	if atomic.LoadInt64(&f.calls) != 2 {
		t.Errorf("upstream calls = %d, want 2 after Invalidate", f.calls)
	}
}
