// Package provider defines the fetcher contract and shared HTTP plumbing
// for the per-provider clients.
package provider

import (
	"context"

	"github.com/grbod/shipdash/internal/domain"
)

// Fetcher pulls one provider's shipments and normalizes them into the
// canonical model. A provider's full result set may require several listing
// calls; implementations concatenate them before normalization.
type Fetcher interface {
	Name() domain.ProviderTag
	Fetch(ctx context.Context, q domain.Query) ([]domain.Shipment, error)
}

// TokenSource supplies bearer tokens for authenticated calls and accepts
// invalidation when the provider reports unauthorized.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}
