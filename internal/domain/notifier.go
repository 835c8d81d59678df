package domain

// NotifierShipment is the reduced projection handed to the legacy
// notification pipeline. It is built entirely from the canonical Shipment
// so the notifier never consumes raw provider payloads.
type NotifierShipment struct {
	ID          string      `json:"id"`
	Provider    ProviderTag `json:"provider"`
	Status      string      `json:"status"`
	Carrier     string      `json:"carrier"`
	Tracking    string      `json:"tracking"`
	Destination Location    `json:"destination"`
	DeliveryAt  string      `json:"delivery_at,omitempty"`
}

// NotifierView projects shipments into the reduced notifier shape.
func NotifierView(shipments []Shipment) []NotifierShipment {
	out := make([]NotifierShipment, 0, len(shipments))
	for _, s := range shipments {
		n := NotifierShipment{
			ID:          s.ID,
			Provider:    s.Provider,
			Status:      s.Status,
			Carrier:     s.Carrier,
			Tracking:    s.Tracking,
			Destination: s.Destination,
		}
		if s.DeliveryAt != nil {
			n.DeliveryAt = s.DeliveryAt.Format("2006-01-02")
		}
		out = append(out, n)
	}
	return out
}
