package freightview

import (
	"context"
	"reflect"
	"testing"

	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/testutil"
)

// staticTokens is a TokenSource that always returns the same bearer token.
type staticTokens struct {
	invalidated int
}

func (s *staticTokens) Token(ctx context.Context) (string, error) { return "test-token", nil }
func (s *staticTokens) Invalidate()                               { s.invalidated++ }

func TestProvider_Fetch(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "freightview_shipments")
	defer cleanup()

	client := NewClient("https://api.freightview.com/v2.0", &staticTokens{},
		WithHTTPClient(testutil.VCRHTTPClient(recorder)))
	p := New(client, nil)

	shipments, err := p.Fetch(context.Background(), domain.Query{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// The picked-up listing carries three records, one without a shipment
	// identifier which is dropped; the pending listing carries one more.
	if len(shipments) != 3 {
		t.Fatalf("Fetch() returned %d shipments, want 3", len(shipments))
	}

	byID := make(map[string]domain.Shipment, len(shipments))
	for _, s := range shipments {
		if s.Provider != domain.ProviderFreight {
			t.Errorf("shipment %s provider = %q, want freight", s.ID, s.Provider)
		}
		byID[s.ID] = s
	}

	inbound, ok := byID["FV-1001"]
	if !ok {
		t.Fatal("missing shipment FV-1001")
	}
	if inbound.Direction != domain.DirectionInbound {
		t.Errorf("FV-1001 direction = %q, want inbound", inbound.Direction)
	}
	if inbound.Carrier != "Estes Express" {
		t.Errorf("FV-1001 carrier = %q, want Estes Express", inbound.Carrier)
	}
	if inbound.Cost == nil || *inbound.Cost != 412.5 {
		t.Errorf("FV-1001 cost = %v, want 412.5", inbound.Cost)
	}
	if inbound.WeightLbs == nil || *inbound.WeightLbs != 1200 {
		t.Errorf("FV-1001 weight = %v, want 1200", inbound.WeightLbs)
	}
	if inbound.Origin.City != "Reno" || inbound.Destination.City != "Austin" {
		t.Errorf("FV-1001 route = %s -> %s, want Reno -> Austin",
			inbound.Origin.City, inbound.Destination.City)
	}
	// Inbound freight pulls its reference from the far-end location.
	if inbound.Reference != "PO-7741" {
		t.Errorf("FV-1001 reference = %q, want PO-7741", inbound.Reference)
	}
	if inbound.PickupAt == nil {
		t.Error("FV-1001 pickup time not parsed")
	}
	if inbound.DeliveryAt == nil {
		t.Error("FV-1001 delivery estimate not parsed")
	}
	if inbound.Tracking != "EST-339021" {
		t.Errorf("FV-1001 tracking = %q, want EST-339021", inbound.Tracking)
	}

	outbound, ok := byID["FV-1002"]
	if !ok {
		t.Fatal("missing shipment FV-1002")
	}
	if outbound.Direction != domain.DirectionOutbound {
		t.Errorf("FV-1002 direction = %q, want outbound", outbound.Direction)
	}
	// Shipment-level reference wins over location references.
	if outbound.Reference != "INV-2280" {
		t.Errorf("FV-1002 reference = %q, want INV-2280", outbound.Reference)
	}

	pending, ok := byID["FV-2001"]
	if !ok {
		t.Fatal("missing shipment FV-2001")
	}
	if pending.Status != "pending" {
		t.Errorf("FV-2001 status = %q, want pending", pending.Status)
	}
	// No selected quote yet: cost stays unknown, carrier falls back.
	if pending.Cost != nil {
		t.Errorf("FV-2001 cost = %v, want nil", *pending.Cost)
	}
	if pending.Carrier != domain.CarrierUnknown {
		t.Errorf("FV-2001 carrier = %q, want %q", pending.Carrier, domain.CarrierUnknown)
	}
}

func TestNormalizeShipmentIsDeterministic(t *testing.T) {
	amount := 321.9
	weight := 500.0
	raw := rawShipment{
		ShipmentID: "FV-77",
		Direction:  "inbound",
		Status:     "picked-up",
		PickupDate: "2025-05-10",
		Locations: []rawLocation{
			{Company: "A", City: "Reno", State: "NV", Country: "US"},
			{Company: "B", City: "Austin", State: "TX", Country: "US",
				RefNums: []rawRefNumber{{Type: "po", Value: "PO-1"}}},
		},
		SelectedQuote: &rawQuote{AssetCarrierName: "Saia", Amount: &amount},
		Equipment:     &rawEquipment{Weight: &weight},
	}

	first := normalizeShipment(raw)
	second := normalizeShipment(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalizeShipment not deterministic:\n%+v\n%+v", first, second)
	}
	if first.Reference != "PO-1" {
		t.Errorf("reference = %q, want PO-1", first.Reference)
	}
}

func TestProvider_FetchStatusOverride(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "freightview_delivered")
	defer cleanup()

	client := NewClient("https://api.freightview.com/v2.0", &staticTokens{},
		WithHTTPClient(testutil.VCRHTTPClient(recorder)))
	p := New(client, nil)

	shipments, err := p.Fetch(context.Background(), domain.Query{Statuses: []string{"delivered"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(shipments) != 1 {
		t.Fatalf("Fetch() returned %d shipments, want 1", len(shipments))
	}
	if shipments[0].Status != "delivered" {
		t.Errorf("status = %q, want delivered", shipments[0].Status)
	}
}

func TestProvider_FetchUnauthorized(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "freightview_unauthorized")
	defer cleanup()

	tokens := &staticTokens{}
	client := NewClient("https://api.freightview.com/v2.0", tokens,
		WithHTTPClient(testutil.VCRHTTPClient(recorder)))
	p := New(client, nil)

	_, err := p.Fetch(context.Background(), domain.Query{})
	if !domain.IsAuthentication(err) {
		t.Fatalf("Fetch() error = %v, want authentication error", err)
	}
	// The rejected token was invalidated before the retry.
	if tokens.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", tokens.invalidated)
	}
}
