package release

import (
	"context"
	"testing"
	"time"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/infra/gateways"
)

type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	m.published = append(m.published, eventType)
	return nil
}

type mockLogger struct {
	infos []string
}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  { m.infos = append(m.infos, msg) }
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) Error(msg string, args ...any) {}

func TestRelease_DropsSessionHolds(t *testing.T) {
	store := reservation.NewStore(10*time.Minute, gateways.NewClock())
	store.Add("mug", 3, "s1")
	store.Add("tote", 1, "s1")
	uc := NewRelease(store, nil, nil)

	uc.Release(context.Background(), Input{ReservationID: "s1"})

	if got := store.Reserved("mug"); got != 0 {
		t.Fatalf("expected holds released, got %d", got)
	}
	if got := store.Reserved("tote"); got != 0 {
		t.Fatalf("expected holds released, got %d", got)
	}
}

func TestRelease_SecondCallIsSilentNoOp(t *testing.T) {
	store := reservation.NewStore(10*time.Minute, gateways.NewClock())
	store.Add("mug", 3, "s1")
	publisher := &mockPublisher{}
	logger := &mockLogger{}
	uc := NewRelease(store, publisher, logger)

	uc.Release(context.Background(), Input{ReservationID: "s1"})
	uc.Release(context.Background(), Input{ReservationID: "s1"})

	if len(publisher.published) != 1 {
		t.Fatalf("expected a single event, got %d", len(publisher.published))
	}
	if len(logger.infos) != 1 {
		t.Fatalf("expected a single log line, got %d", len(logger.infos))
	}
}

func TestRelease_UnknownIDIsNoOp(t *testing.T) {
	store := reservation.NewStore(10*time.Minute, gateways.NewClock())
	publisher := &mockPublisher{}
	uc := NewRelease(store, publisher, nil)

	uc.Release(context.Background(), Input{ReservationID: "missing"})

	if len(publisher.published) != 0 {
		t.Fatalf("expected no events, got %v", publisher.published)
	}
}
