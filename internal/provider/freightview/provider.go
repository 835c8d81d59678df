// Package freightview fetches and normalizes shipments from the
// freight-quoting provider.
package freightview

import (
	"context"
	"log/slog"

	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/provider"
)

// defaultStatuses are the listing filters that make up one logical query:
// in-transit freight plus booked-but-not-picked-up freight live behind
// separate status filters upstream.
var defaultStatuses = []string{"picked-up", "pending"}

// Provider implements provider.Fetcher for the freight-quoting API.
type Provider struct {
	client *Client
	logger *slog.Logger
}

// New creates the freight provider over an existing client.
func New(client *Client, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{client: client, logger: logger}
}

// Name implements provider.Fetcher.
func (p *Provider) Name() domain.ProviderTag {
	return domain.ProviderFreight
}

// Fetch lists shipments for every requested status, concatenates the raw
// results, and normalizes them. One malformed record never aborts the fetch;
// a transport or auth failure on any listing call fails the whole fetch.
func (p *Provider) Fetch(ctx context.Context, q domain.Query) ([]domain.Shipment, error) {
	statuses := q.Statuses
	if len(statuses) == 0 {
		statuses = defaultStatuses
	}

	var raw []rawShipment
	for _, status := range statuses {
		resp, err := p.client.ListShipments(ctx, status)
		if err != nil {
			return nil, err
		}
		raw = append(raw, resp.Shipments...)
	}

	return p.normalize(raw), nil
}

func (p *Provider) normalize(raw []rawShipment) []domain.Shipment {
	out := make([]domain.Shipment, 0, len(raw))
	for _, r := range raw {
		if r.ShipmentID == "" {
			p.logger.Warn("dropping record without shipment identifier",
				slog.String("provider", string(domain.ProviderFreight)),
				slog.String("status", r.Status))
			continue
		}
		out = append(out, normalizeShipment(r))
	}
	return out
}

func normalizeShipment(r rawShipment) domain.Shipment {
	s := domain.Shipment{
		ID:        r.ShipmentID,
		Provider:  domain.ProviderFreight,
		Direction: normalizeDirection(r.Direction),
		Status:    r.Status,
		Carrier:   domain.CarrierUnknown,
		Tracking:  r.Tracking.TrackingNumber,
	}
	if s.Status == "" {
		s.Status = "unknown"
	}

	if r.SelectedQuote != nil {
		if r.SelectedQuote.AssetCarrierName != "" {
			s.Carrier = r.SelectedQuote.AssetCarrierName
		}
		s.Cost = r.SelectedQuote.Amount
	}
	if r.Equipment != nil {
		s.WeightLbs = r.Equipment.Weight
	}

	if len(r.Locations) > 0 {
		s.Origin = toLocation(r.Locations[0])
	}
	if len(r.Locations) > 1 {
		s.Destination = toLocation(r.Locations[len(r.Locations)-1])
	}
	s.Reference = referenceNumber(r)

	s.PickupAt = provider.ParseTime(r.PickupDate)
	s.DeliveryAt = provider.ParseTime(r.Tracking.DeliveryDateEstimate)

	return s
}

func normalizeDirection(d string) domain.Direction {
	switch d {
	case "inbound":
		return domain.DirectionInbound
	case "outbound":
		return domain.DirectionOutbound
	default:
		return domain.DirectionUnknown
	}
}

func toLocation(l rawLocation) domain.Location {
	return domain.Location{
		Company: l.Company,
		City:    l.City,
		State:   l.State,
		Country: l.Country,
	}
}

// referenceNumber extracts the customer-facing reference. Inbound freight
// carries the PO number on the far-end location, outbound freight carries
// the invoice number on the near end; shipment-level refs win when present.
func referenceNumber(r rawShipment) string {
	if len(r.RefNums) > 0 && r.RefNums[0].Value != "" {
		return r.RefNums[0].Value
	}
	ordered := r.Locations
	if normalizeDirection(r.Direction) == domain.DirectionInbound {
		ordered = reversed(r.Locations)
	}
	for _, loc := range ordered {
		for _, ref := range loc.RefNums {
			if ref.Value != "" {
				return ref.Value
			}
		}
	}
	return ""
}

func reversed(locs []rawLocation) []rawLocation {
	out := make([]rawLocation, len(locs))
	for i, l := range locs {
		out[len(locs)-1-i] = l
	}
	return out
}
