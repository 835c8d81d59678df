package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultDaysBack bounds date-filtered listing calls when the caller does
// not specify a window.
const DefaultDaysBack = 30

// Query describes one logical shipment-listing request. The status
// vocabulary is provider-specific and passed through opaquely; providers
// ignore statuses they do not recognize.
type Query struct {
	// Statuses filters shipments by provider-specific status strings.
	// Empty means each provider's default set.
	Statuses []string

	// DaysBack bounds date-ranged listing calls. Zero means
	// DefaultDaysBack.
	DaysBack int

	// ForceRefresh bypasses the cache TTL. It is deliberately excluded
	// from the cache key so a forced fetch refreshes the same entry a
	// normal fetch would read.
	ForceRefresh bool
}

// EffectiveDaysBack returns DaysBack with the default applied.
func (q Query) EffectiveDaysBack() int {
	if q.DaysBack <= 0 {
		return DefaultDaysBack
	}
	return q.DaysBack
}

// Signature returns the canonical form of the query used in cache keys.
// Status order is irrelevant to the result, so statuses are sorted.
func (q Query) Signature() string {
	statuses := make([]string, len(q.Statuses))
	copy(statuses, q.Statuses)
	sort.Strings(statuses)
	return fmt.Sprintf("statuses=%s;days=%d", strings.Join(statuses, ","), q.EffectiveDaysBack())
}
