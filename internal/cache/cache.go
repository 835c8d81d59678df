// Package cache memoizes fetcher results keyed by (provider, query
// signature) with a time-to-live. Entries are immutable snapshots; a failed
// refresh serves the stale snapshot rather than failing the request.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/provider"
)

// FetchInfo describes how a GetOrFetch call was satisfied; the aggregator
// turns it into the per-provider status of the unified result.
type FetchInfo struct {
	State     domain.ProviderState
	FetchedAt time.Time
	FromCache bool
	Err       error
}

type entry struct {
	shipments []domain.Shipment
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is the TTL memoization layer in front of the provider fetchers.
type Cache struct {
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
	sf      singleflight.Group
}

// New creates a cache with the given TTL.
func New(ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached shipments for (fetcher, query) when fresh,
// otherwise fetches and stores a new snapshot. Fetch failures fall back to
// the stale snapshot when one exists (degraded) or to an empty list
// (failed). ForceRefresh bypasses the freshness check but still serves
// stale on error. Concurrent callers for the same key share one fetch.
func (c *Cache) GetOrFetch(ctx context.Context, f provider.Fetcher, q domain.Query) ([]domain.Shipment, FetchInfo) {
	key := string(f.Name()) + "|" + q.Signature()

	if !q.ForceRefresh {
		if e, ok := c.fresh(key); ok {
			return e.shipments, FetchInfo{
				State:     domain.ProviderOK,
				FetchedAt: e.fetchedAt,
				FromCache: true,
			}
		}
	}

	type outcome struct {
		shipments []domain.Shipment
		info      FetchInfo
	}
	v, _, _ := c.sf.Do(key, func() (interface{}, error) {
		// A caller that queued behind an identical fetch can use its
		// result; re-check freshness unless forced.
		if !q.ForceRefresh {
			if e, ok := c.fresh(key); ok {
				return outcome{e.shipments, FetchInfo{
					State:     domain.ProviderOK,
					FetchedAt: e.fetchedAt,
					FromCache: true,
				}}, nil
			}
		}

		shipments, err := f.Fetch(ctx, q)
		if err == nil {
			now := c.now()
			c.mu.Lock()
			c.entries[key] = &entry{shipments: shipments, fetchedAt: now}
			c.mu.Unlock()
			return outcome{shipments, FetchInfo{
				State:     domain.ProviderOK,
				FetchedAt: now,
			}}, nil
		}

		// Serve-stale-on-error: a previous snapshot beats an empty
		// answer, and the degraded state makes the staleness visible.
		c.mu.RLock()
		stale, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			c.logger.Warn("fetch failed, serving stale cache entry",
				slog.String("provider", string(f.Name())),
				slog.Time("fetched_at", stale.fetchedAt),
				slog.String("error", err.Error()))
			return outcome{stale.shipments, FetchInfo{
				State:     domain.ProviderDegraded,
				FetchedAt: stale.fetchedAt,
				FromCache: true,
				Err:       err,
			}}, nil
		}

		c.logger.Error("fetch failed with no cached fallback",
			slog.String("provider", string(f.Name())),
			slog.String("error", err.Error()))
		return outcome{nil, FetchInfo{
			State: domain.ProviderFailed,
			Err:   err,
		}}, nil
	})

	o := v.(outcome)
	return o.shipments, o.info
}

// Invalidate drops every entry for the given provider. Used by tests and
// operational resets.
func (c *Cache) Invalidate(tag domain.ProviderTag) {
	prefix := string(tag) + "|"
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) fresh(key string) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e, true
}
