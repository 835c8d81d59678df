// Package shipstation fetches and normalizes parcel shipments and pending
// orders from the parcel-carrier provider.
package shipstation

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/provider"
)

// awaitingShipment is the order status representing parcels not yet shipped.
const awaitingShipment = "awaiting_shipment"

// Provider implements provider.Fetcher for the parcel-carrier API. One
// logical query spans two upstream listings: shipped parcels from
// /shipments and pending parcels from /orders.
type Provider struct {
	client *Client
	logger *slog.Logger
	now    func() time.Time
}

// New creates the parcel provider over an existing client.
func New(client *Client, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{client: client, logger: logger, now: time.Now}
}

// Name implements provider.Fetcher.
func (p *Provider) Name() domain.ProviderTag {
	return domain.ProviderParcel
}

// Fetch lists shipped parcels and awaiting-shipment orders over the query's
// date window and normalizes the concatenation. Records missing an
// identifier are dropped with a warning.
func (p *Provider) Fetch(ctx context.Context, q domain.Query) ([]domain.Shipment, error) {
	end := p.now()
	dr := DateRange{Start: end.AddDate(0, 0, -q.EffectiveDaysBack()), End: end}

	shipments, err := p.client.ListShipments(ctx, dr)
	if err != nil {
		return nil, err
	}
	orders, err := p.client.ListOrders(ctx, awaitingShipment, dr)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Shipment, 0, len(shipments)+len(orders))
	for _, r := range shipments {
		if r.ShipmentID == 0 {
			p.logger.Warn("dropping shipment without identifier",
				slog.String("provider", string(domain.ProviderParcel)),
				slog.String("order_number", r.OrderNumber))
			continue
		}
		out = append(out, normalizeRawShipment(r))
	}
	for _, r := range orders {
		if r.OrderID == 0 {
			p.logger.Warn("dropping order without identifier",
				slog.String("provider", string(domain.ProviderParcel)),
				slog.String("order_number", r.OrderNumber))
			continue
		}
		out = append(out, normalizeRawOrder(r))
	}
	return out, nil
}

func normalizeRawShipment(r rawShipment) domain.Shipment {
	status := "shipped"
	if r.Voided {
		status = "voided"
	}
	s := domain.Shipment{
		ID:          strconv.FormatInt(r.ShipmentID, 10),
		Provider:    domain.ProviderParcel,
		Direction:   domain.DirectionOutbound,
		Status:      status,
		Carrier:     normalizeCarrier(r.CarrierCode),
		Cost:        r.ShipmentCost,
		WeightLbs:   weightLbs(r.Weight),
		Destination: toLocation(r.ShipTo),
		PickupAt:    provider.ParseTime(r.ShipDate),
		Tracking:    r.TrackingNumber,
		Reference:   r.OrderNumber,
	}
	return s
}

func normalizeRawOrder(r rawOrder) domain.Shipment {
	status := r.OrderStatus
	if status == "" || status == awaitingShipment {
		status = "pending"
	}
	return domain.Shipment{
		ID:          strconv.FormatInt(r.OrderID, 10),
		Provider:    domain.ProviderParcel,
		Direction:   domain.DirectionOutbound,
		Status:      status,
		Carrier:     normalizeCarrier(r.CarrierCode),
		// Orders carry no shipment cost yet; unknown, never zero.
		Cost:        nil,
		WeightLbs:   weightLbs(r.Weight),
		Destination: toLocation(r.ShipTo),
		DeliveryAt:  provider.ParseTime(r.ShipByDate),
		PickupAt:    provider.ParseTime(r.OrderDate),
		Reference:   r.OrderNumber,
	}
}

func normalizeCarrier(code string) string {
	if code == "" {
		return domain.CarrierUnknown
	}
	return code
}

func toLocation(a *rawAddress) domain.Location {
	if a == nil {
		return domain.Location{}
	}
	company := a.Company
	if company == "" {
		company = a.Name
	}
	return domain.Location{
		Company: company,
		City:    a.City,
		State:   a.State,
		Country: a.Country,
	}
}

// weightLbs converts the provider's weight to pounds once, at the boundary.
// Unrecognized units yield unknown rather than a misinterpreted number.
func weightLbs(w *rawWeight) *float64 {
	if w == nil || w.Value == nil {
		return nil
	}
	var lbs float64
	switch w.Units {
	case "pounds", "lbs", "lb":
		lbs = *w.Value
	case "ounces", "oz":
		lbs = *w.Value / 16
	case "grams", "g":
		lbs = *w.Value / 453.592
	default:
		return nil
	}
	return &lbs
}
