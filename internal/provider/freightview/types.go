package freightview

// Raw wire types for the freight-quoting API's shipment listing. These never
// leave this package: they are validated and mapped into domain.Shipment or
// dropped.

type shipmentsResponse struct {
	Shipments []rawShipment `json:"shipments"`
}

type rawShipment struct {
	ShipmentID string `json:"shipmentId"`
	Direction  string `json:"direction"`
	Status     string `json:"status"`
	PickupDate string `json:"pickupDate"`

	Locations     []rawLocation  `json:"locations"`
	SelectedQuote *rawQuote      `json:"selectedQuote"`
	Equipment     *rawEquipment  `json:"equipment"`
	Tracking      rawTracking    `json:"tracking"`
	RefNums       []rawRefNumber `json:"refNums"`
}

type rawLocation struct {
	Company      string         `json:"company"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	Country      string         `json:"country"`
	ContactEmail string         `json:"contactEmail"`
	RefNums      []rawRefNumber `json:"refNums"`
}

type rawRefNumber struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type rawQuote struct {
	AssetCarrierName string   `json:"assetCarrierName"`
	Amount           *float64 `json:"amount"`
}

type rawEquipment struct {
	Weight *float64 `json:"weight"`
}

type rawTracking struct {
	TrackingNumber       string `json:"trackingNumber"`
	DeliveryDateEstimate string `json:"deliveryDateEstimate"`
	LastUpdatedDate      string `json:"lastUpdatedDate"`
}
