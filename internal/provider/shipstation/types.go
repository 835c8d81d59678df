package shipstation

// Raw wire types for the parcel-carrier API. Listing responses are paged;
// Page/Pages drive the pagination loop in the client.

type shipmentsResponse struct {
	Shipments []rawShipment `json:"shipments"`
	Total     int           `json:"total"`
	Page      int           `json:"page"`
	Pages     int           `json:"pages"`
}

type ordersResponse struct {
	Orders []rawOrder `json:"orders"`
	Total  int        `json:"total"`
	Page   int        `json:"page"`
	Pages  int        `json:"pages"`
}

type rawShipment struct {
	ShipmentID     int64      `json:"shipmentId"`
	OrderNumber    string     `json:"orderNumber"`
	CustomerEmail  string     `json:"customerEmail"`
	CreateDate     string     `json:"createDate"`
	ShipDate       string     `json:"shipDate"`
	ShipmentCost   *float64   `json:"shipmentCost"`
	TrackingNumber string     `json:"trackingNumber"`
	CarrierCode    string     `json:"carrierCode"`
	ServiceCode    string     `json:"serviceCode"`
	Voided         bool       `json:"voided"`
	ShipTo         *rawAddress `json:"shipTo"`
	Weight         *rawWeight  `json:"weight"`
}

type rawOrder struct {
	OrderID     int64       `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	OrderDate   string      `json:"orderDate"`
	OrderStatus string      `json:"orderStatus"`
	ShipByDate  string      `json:"shipByDate"`
	CarrierCode string      `json:"carrierCode"`
	ShipTo      *rawAddress `json:"shipTo"`
	Weight      *rawWeight  `json:"weight"`
}

type rawAddress struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type rawWeight struct {
	Value *float64 `json:"value"`
	Units string   `json:"units"`
}
