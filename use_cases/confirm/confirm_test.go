package confirm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/infra/gateways"
	"github.com/harvicreates/inventory/protocols"
)

type decrementCall struct {
	productID string
	quantity  int32
}

type mockCatalog struct {
	failAfter  int // fail the (failAfter+1)th decrement; -1 never fails
	decrements []decrementCall
}

func (m *mockCatalog) GetStock(ctx context.Context, productID string) (*protocols.Product, error) {
	return nil, reservation.ErrProductNotFound
}

func (m *mockCatalog) DecrementStock(ctx context.Context, productID string, quantity int32) error {
	if m.failAfter >= 0 && len(m.decrements) >= m.failAfter {
		return reservation.ErrStockUpdateFailed
	}
	m.decrements = append(m.decrements, decrementCall{productID: productID, quantity: quantity})
	return nil
}

type mockIdempotency struct {
	reserveResult *protocols.IdempotencyKeyResult
	reserveErr    error

	markedSuccess bool
	markedFailure bool
}

func (m *mockIdempotency) ReserveKey(ctx context.Context, key string) (*protocols.IdempotencyKeyResult, error) {
	return m.reserveResult, m.reserveErr
}

func (m *mockIdempotency) MarkSuccess(ctx context.Context, key string) error {
	m.markedSuccess = true
	return nil
}

func (m *mockIdempotency) MarkFailure(ctx context.Context, key string) error {
	m.markedFailure = true
	return nil
}

func newStore() *reservation.Store {
	return reservation.NewStore(10*time.Minute, gateways.NewClock())
}

func TestConfirm_DecrementsAndClearsReservation(t *testing.T) {
	catalog := &mockCatalog{failAfter: -1}
	store := newStore()
	store.Add("mug", 3, "s1")
	store.Add("tote", 1, "s1")
	idempotency := &mockIdempotency{}
	uc := NewConfirm(catalog, store, idempotency, nil, nil, nil, nil)

	out := uc.Confirm(context.Background(), Input{ReservationID: "s1"})
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if len(out.UpdatedItems) != 2 {
		t.Fatalf("expected 2 updated items, got %d", len(out.UpdatedItems))
	}
	if len(catalog.decrements) != 2 {
		t.Fatalf("expected 2 decrements, got %d", len(catalog.decrements))
	}
	for _, call := range catalog.decrements {
		switch call.productID {
		case "mug":
			if call.quantity != 3 {
				t.Fatalf("expected mug decremented by 3, got %d", call.quantity)
			}
		case "tote":
			if call.quantity != 1 {
				t.Fatalf("expected tote decremented by 1, got %d", call.quantity)
			}
		default:
			t.Fatalf("unexpected decrement for %s", call.productID)
		}
	}
	if items := store.SessionItems("s1"); len(items) != 0 {
		t.Fatalf("expected reservation cleared, got %v", items)
	}
	if !idempotency.markedSuccess {
		t.Fatal("expected idempotency key marked successful")
	}
}

func TestConfirm_UnknownReservation(t *testing.T) {
	catalog := &mockCatalog{failAfter: -1}
	idempotency := &mockIdempotency{}
	uc := NewConfirm(catalog, newStore(), idempotency, nil, nil, nil, nil)

	out := uc.Confirm(context.Background(), Input{ReservationID: "missing"})
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Error != reservation.ErrNoReservation.Error() {
		t.Fatalf("unexpected error: %q", out.Error)
	}
	if len(catalog.decrements) != 0 {
		t.Fatalf("expected no remote mutation, got %v", catalog.decrements)
	}
	if !idempotency.markedFailure {
		t.Fatal("expected idempotency key released for retry")
	}
}

func TestConfirm_PartialFailureKeepsAppliedDecrements(t *testing.T) {
	catalog := &mockCatalog{failAfter: 1}
	store := newStore()
	store.Add("mug", 3, "s1")
	store.Add("tote", 1, "s1")
	uc := NewConfirm(catalog, store, nil, nil, nil, nil, nil)

	out := uc.Confirm(context.Background(), Input{ReservationID: "s1"})
	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Error, reservation.ErrStockUpdateFailed.Error()) {
		t.Fatalf("unexpected error: %q", out.Error)
	}
	if !strings.Contains(out.Error, "for product") {
		t.Fatalf("expected error to name the product, got %q", out.Error)
	}
	// no compensation: the first decrement stays applied, the holds stay live
	if len(catalog.decrements) != 1 {
		t.Fatalf("expected exactly one applied decrement, got %d", len(catalog.decrements))
	}
	if items := store.SessionItems("s1"); len(items) != 2 {
		t.Fatalf("expected holds kept for retry, got %v", items)
	}
}

func TestConfirm_ReplayOfConfirmedReservation(t *testing.T) {
	catalog := &mockCatalog{failAfter: -1}
	idempotency := &mockIdempotency{
		reserveResult: &protocols.IdempotencyKeyResult{Success: true},
	}
	uc := NewConfirm(catalog, newStore(), idempotency, nil, nil, nil, nil)

	out := uc.Confirm(context.Background(), Input{ReservationID: "s1"})
	if !out.Success {
		t.Fatalf("expected replay to report success, got %+v", out)
	}
	if len(catalog.decrements) != 0 {
		t.Fatalf("expected no decrements on replay, got %v", catalog.decrements)
	}
}

type mockArchive struct {
	records []protocols.OrderRecord
}

func (m *mockArchive) SaveOrder(ctx context.Context, record protocols.OrderRecord) error {
	m.records = append(m.records, record)
	return nil
}

func TestConfirm_ArchivesOrder(t *testing.T) {
	catalog := &mockCatalog{failAfter: -1}
	store := newStore()
	store.Add("mug", 2, "s1")
	archive := &mockArchive{}
	uc := NewConfirm(catalog, store, nil, archive, nil, nil, nil)

	out := uc.Confirm(context.Background(), Input{
		ReservationID: "s1",
		Order:         map[string]any{"email": "customer@example.com"},
	})
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if len(archive.records) != 1 {
		t.Fatalf("expected one archived order, got %d", len(archive.records))
	}
	record := archive.records[0]
	if record.ReservationID != "s1" || len(record.Items) != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Context["email"] != "customer@example.com" {
		t.Fatalf("expected order context kept, got %+v", record.Context)
	}
}
