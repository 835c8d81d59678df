// Package aggregator merges both providers' normalized shipments into one
// unified result with summary metrics and per-provider status. A failure in
// one provider never prevents returning the other's data.
package aggregator

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grbod/shipdash/internal/cache"
	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/provider"
)

// Service drives the per-provider fetch paths through the cache and merges
// their output.
type Service struct {
	fetchers []provider.Fetcher
	cache    *cache.Cache
	logger   *slog.Logger
	now      func() time.Time
}

// New creates the aggregation service.
func New(fetchers []provider.Fetcher, c *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetchers: fetchers, cache: c, logger: logger, now: time.Now}
}

// Unified fetches every provider concurrently and returns the merged
// result. It never fails: provider errors are folded into the per-provider
// status so partial results are always explicit, never hidden.
func (s *Service) Unified(ctx context.Context, q domain.Query) *domain.UnifiedResult {
	type fetched struct {
		tag       domain.ProviderTag
		shipments []domain.Shipment
		info      cache.FetchInfo
	}

	results := make([]fetched, len(s.fetchers))
	var wg sync.WaitGroup
	for i, f := range s.fetchers {
		wg.Add(1)
		go func(i int, f provider.Fetcher) {
			defer wg.Done()
			shipments, info := s.cache.GetOrFetch(ctx, f, q)
			results[i] = fetched{tag: f.Name(), shipments: shipments, info: info}
		}(i, f)
	}
	wg.Wait()

	var merged []domain.Shipment
	perProvider := make(map[domain.ProviderTag]domain.ProviderStatus, len(results))
	for _, r := range results {
		merged = append(merged, r.shipments...)
		status := domain.ProviderStatus{
			State:     r.info.State,
			FetchedAt: r.info.FetchedAt,
			FromCache: r.info.FromCache,
		}
		if r.info.Err != nil {
			status.LastError = r.info.Err.Error()
		}
		perProvider[r.tag] = status
	}

	sortShipments(merged)

	return &domain.UnifiedResult{
		Shipments:   merged,
		Summary:     Summarize(merged),
		PerProvider: perProvider,
		GeneratedAt: s.now(),
	}
}

// sortShipments orders most-recent-first by reference timestamp, with
// provider tag and shipment ID breaking ties so ordering stays
// deterministic across calls.
func sortShipments(shipments []domain.Shipment) {
	sort.SliceStable(shipments, func(i, j int) bool {
		ti, tj := shipments[i].ReferenceTime(), shipments[j].ReferenceTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		if shipments[i].Provider != shipments[j].Provider {
			return shipments[i].Provider < shipments[j].Provider
		}
		return shipments[i].ID < shipments[j].ID
	})
}

// Summarize computes the derived metrics over a merged shipment list.
// Unknown costs are excluded from sums and counted, never treated as zero.
func Summarize(shipments []domain.Shipment) domain.Summary {
	sum := domain.Summary{
		TotalCount: len(shipments),
		ByCarrier:  make(map[string]domain.CarrierMetrics),
	}

	var costedWeight float64
	var costedWithWeight float64
	for _, s := range shipments {
		switch s.Direction {
		case domain.DirectionInbound:
			sum.InboundCount++
		case domain.DirectionOutbound:
			sum.OutboundCount++
		}

		if s.Status == "delivered" {
			sum.DeliveredCount++
		}

		if s.WeightLbs != nil {
			sum.TotalWeightLbs += *s.WeightLbs
		}

		carrier := strings.ToLower(strings.TrimSpace(s.Carrier))
		if carrier == "" {
			carrier = strings.ToLower(domain.CarrierUnknown)
		}
		cm := sum.ByCarrier[carrier]
		cm.Count++
		if s.Cost != nil {
			sum.TotalCost += *s.Cost
			cm.Cost += *s.Cost
			if s.WeightLbs != nil && *s.WeightLbs > 0 {
				costedWithWeight += *s.Cost
				costedWeight += *s.WeightLbs
			}
		} else {
			sum.CostUnknownCount++
			cm.CostUnknown++
		}
		sum.ByCarrier[carrier] = cm
	}

	if costedWeight > 0 {
		sum.AvgCostPerLb = round2(costedWithWeight / costedWeight)
	}
	if sum.TotalCount > 0 {
		sum.DeliveryRate = round1(float64(sum.DeliveredCount) / float64(sum.TotalCount) * 100)
	}
	sum.TotalCost = round2(sum.TotalCost)

	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
