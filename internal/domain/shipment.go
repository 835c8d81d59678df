// Package domain provides the canonical shipment model shared by every
// component. Provider-specific payloads are translated into these types at the
// fetcher boundary; nothing downstream branches on provider identity.
package domain

import "time"

// ProviderTag identifies the upstream data source of a shipment.
type ProviderTag string

const (
	// ProviderFreight is the freight-quoting provider (LTL shipments).
	ProviderFreight ProviderTag = "freight"

	// ProviderParcel is the parcel-carrier provider (small-package shipments).
	ProviderParcel ProviderTag = "parcel"
)

// Direction indicates whether a shipment moves toward or away from us.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
	DirectionUnknown  Direction = "unknown"
)

// CarrierUnknown is the placeholder carrier name when a provider omits one.
const CarrierUnknown = "Unknown"

// Location is one endpoint of a shipment. Fields a provider does not supply
// are left empty; the struct itself is always present on a Shipment.
type Location struct {
	Company string `json:"company"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Shipment is the canonical, provider-agnostic shipment record. Every field
// is present regardless of source; optional numerics and timestamps use nil
// to mean "unknown" so consumers never mistake absence for zero.
type Shipment struct {
	// ID is the provider-assigned identifier. Unique within a provider,
	// not across providers.
	ID       string      `json:"id"`
	Provider ProviderTag `json:"provider"`

	Direction Direction `json:"direction"`
	Status    string    `json:"status"`
	Carrier   string    `json:"carrier"`

	// Cost in USD. nil when the provider reported no cost.
	Cost *float64 `json:"cost"`

	// WeightLbs is the shipment weight in pounds, converted at the
	// fetcher boundary. nil when unknown.
	WeightLbs *float64 `json:"weight_lbs"`

	Origin      Location `json:"origin"`
	Destination Location `json:"destination"`

	// PickupAt is the pickup (or ship) timestamp; DeliveryAt is the
	// delivery estimate or actual delivery. nil when the provider has
	// not reported one.
	PickupAt   *time.Time `json:"pickup_at"`
	DeliveryAt *time.Time `json:"delivery_at"`

	// Tracking is the carrier tracking reference, empty when not yet
	// assigned.
	Tracking string `json:"tracking"`

	// Reference is the customer-facing reference (PO number, invoice
	// number or order number depending on direction and provider).
	Reference string `json:"reference"`
}

// ReferenceTime returns the timestamp used for cross-provider ordering:
// pickup when known, otherwise the delivery estimate, otherwise the zero
// time so undated shipments sort last.
func (s *Shipment) ReferenceTime() time.Time {
	if s.PickupAt != nil {
		return *s.PickupAt
	}
	if s.DeliveryAt != nil {
		return *s.DeliveryAt
	}
	return time.Time{}
}
