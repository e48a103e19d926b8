package reserve

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/infra/gateways"
	"github.com/harvicreates/inventory/protocols"
	"github.com/harvicreates/inventory/use_cases/availability"
	"github.com/harvicreates/inventory/use_cases/release"
)

type mockChecker struct {
	responses map[string]protocols.Availability
	calls     []string
}

func (m *mockChecker) Check(ctx context.Context, productID string, quantity int32) protocols.Availability {
	m.calls = append(m.calls, productID)
	return m.responses[productID]
}

type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	m.published = append(m.published, eventType)
	return nil
}

func newStore() *reservation.Store {
	return reservation.NewStore(10*time.Minute, gateways.NewClock())
}

func TestReserve_Success(t *testing.T) {
	checker := &mockChecker{responses: map[string]protocols.Availability{
		"mug":  {Available: true, AvailableStock: 5},
		"tote": {Available: true, AvailableStock: 8},
	}}
	store := newStore()
	publisher := &mockPublisher{}
	uc := NewReserve(checker, store, publisher, nil)

	out := uc.Reserve(context.Background(), Input{
		Items:     []Item{{ProductID: "mug", Quantity: 3}, {ProductID: "tote", Quantity: 1}},
		SessionID: "s1",
	})
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.ReservationID != "s1" {
		t.Fatalf("expected supplied session id to be kept, got %s", out.ReservationID)
	}
	if len(out.ReservedItems) != 2 {
		t.Fatalf("expected 2 reserved items, got %d", len(out.ReservedItems))
	}
	if out.ExpiresAt.Before(time.Now()) {
		t.Fatalf("expected future expiry, got %v", out.ExpiresAt)
	}
	if got := store.Reserved("mug"); got != 3 {
		t.Fatalf("expected 3 held for mug, got %d", got)
	}
	if len(publisher.published) != 1 || publisher.published[0] != protocols.EventStockReserved {
		t.Fatalf("unexpected events: %v", publisher.published)
	}
}

func TestReserve_GeneratesReservationID(t *testing.T) {
	checker := &mockChecker{responses: map[string]protocols.Availability{
		"mug": {Available: true},
	}}
	uc := NewReserve(checker, newStore(), nil, nil)

	out := uc.Reserve(context.Background(), Input{Items: []Item{{ProductID: "mug", Quantity: 1}}})
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if !strings.HasPrefix(out.ReservationID, "res_") {
		t.Fatalf("expected generated id, got %s", out.ReservationID)
	}
}

func TestReserve_RollsBackOnFirstUnavailableItem(t *testing.T) {
	checker := &mockChecker{responses: map[string]protocols.Availability{
		"mug": {Available: true, AvailableStock: 5},
		"tote": {
			Available:      false,
			AvailableStock: 1,
			Product:        &protocols.Product{ID: "tote", Title: "Canvas Tote Bag", StockQuantity: 1},
		},
	}}
	store := newStore()
	uc := NewReserve(checker, store, nil, nil)

	out := uc.Reserve(context.Background(), Input{
		Items:     []Item{{ProductID: "mug", Quantity: 3}, {ProductID: "tote", Quantity: 2}},
		SessionID: "s1",
	})
	if out.Success {
		t.Fatalf("expected failure, got %+v", out)
	}
	if !strings.Contains(out.Error, "Canvas Tote Bag") {
		t.Fatalf("expected error naming the product, got %q", out.Error)
	}
	if out.AvailableStock != 1 {
		t.Fatalf("expected available stock 1, got %d", out.AvailableStock)
	}
	if got := store.Reserved("mug"); got != 0 {
		t.Fatalf("expected earlier hold rolled back, got %d", got)
	}
}

func TestReserve_PropagatesCatalogError(t *testing.T) {
	checker := &mockChecker{responses: map[string]protocols.Availability{
		"mug": {Available: false, Error: reservation.ErrProductNotFound.Error()},
	}}
	uc := NewReserve(checker, newStore(), nil, nil)

	out := uc.Reserve(context.Background(), Input{Items: []Item{{ProductID: "mug", Quantity: 1}}})
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Error != reservation.ErrProductNotFound.Error() {
		t.Fatalf("unexpected error: %q", out.Error)
	}
}

// Full flow against a real availability check and in-memory catalog:
// reserve 3 of 5 mugs under s1, a second session is blocked at 2 available,
// releasing s1 restores all 5.
func TestReserve_SecondSessionBlockedUntilRelease(t *testing.T) {
	catalog := gateways.NewCatalogMemory(protocols.Product{ID: "mug", Title: "Mug", StockQuantity: 5})
	store := newStore()
	checker := availability.NewCheckAvailability(catalog, store, nil)
	reserveUC := NewReserve(checker, store, nil, nil)
	releaseUC := release.NewRelease(store, nil, nil)

	out := reserveUC.Reserve(context.Background(), Input{
		Items:     []Item{{ProductID: "mug", Quantity: 3}},
		SessionID: "s1",
	})
	if !out.Success {
		t.Fatalf("expected first reservation to succeed, got %+v", out)
	}

	check := checker.Check(context.Background(), "mug", 1)
	if check.AvailableStock != 2 {
		t.Fatalf("expected 2 available after reservation, got %d", check.AvailableStock)
	}

	out = reserveUC.Reserve(context.Background(), Input{
		Items:     []Item{{ProductID: "mug", Quantity: 3}},
		SessionID: "s2",
	})
	if out.Success {
		t.Fatal("expected second reservation to fail")
	}
	if out.AvailableStock != 2 {
		t.Fatalf("expected reported available stock 2, got %d", out.AvailableStock)
	}

	releaseUC.Release(context.Background(), release.Input{ReservationID: "s1"})

	check = checker.Check(context.Background(), "mug", 5)
	if !check.Available || check.AvailableStock != 5 {
		t.Fatalf("expected full stock restored, got %+v", check)
	}
}
