package domain

import "time"

// ProviderState classifies how a provider's data contributed to a result.
type ProviderState string

const (
	// ProviderOK means the provider's data is fresh (served from a live
	// fetch or a within-TTL cache entry).
	ProviderOK ProviderState = "ok"

	// ProviderDegraded means the fetch failed but a stale cache snapshot
	// was served instead.
	ProviderDegraded ProviderState = "degraded"

	// ProviderFailed means the fetch failed with nothing cached; the
	// provider contributed no shipments.
	ProviderFailed ProviderState = "failed"
)

// ProviderStatus reports one provider's contribution to a UnifiedResult.
type ProviderStatus struct {
	State     ProviderState `json:"state"`
	LastError string        `json:"last_error,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
	FromCache bool          `json:"from_cache"`
}

// CarrierMetrics accumulates per-carrier totals in a Summary.
type CarrierMetrics struct {
	Count int `json:"count"`
	// Cost is the summed cost of shipments with a known cost.
	Cost float64 `json:"cost"`
	// CostUnknown counts shipments excluded from Cost.
	CostUnknown int `json:"cost_unknown"`
}

// Summary holds the derived metrics for a merged shipment list. Shipments
// with an unknown cost are excluded from cost sums and counted in
// CostUnknownCount, never treated as zero.
type Summary struct {
	TotalCount       int     `json:"total_count"`
	TotalCost        float64 `json:"total_cost"`
	CostUnknownCount int     `json:"cost_unknown_count"`

	InboundCount  int `json:"inbound_count"`
	OutboundCount int `json:"outbound_count"`

	TotalWeightLbs float64 `json:"total_weight_lbs"`
	AvgCostPerLb   float64 `json:"avg_cost_per_lb"`

	DeliveredCount int     `json:"delivered_count"`
	DeliveryRate   float64 `json:"delivery_rate"`

	ByCarrier map[string]CarrierMetrics `json:"by_carrier"`
}

// UnifiedResult is the aggregator's output: the merged shipment list, its
// summary metrics, and per-provider status. It is recomputed on every call
// and never persisted. A UnifiedResult is always returned, possibly partial;
// partial-ness is signaled through PerProvider, never hidden.
type UnifiedResult struct {
	Shipments   []Shipment                     `json:"shipments"`
	Summary     Summary                        `json:"summary"`
	PerProvider map[ProviderTag]ProviderStatus `json:"per_provider_status"`
	GeneratedAt time.Time                      `json:"generated_at"`
}
