package reserve

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/protocols"
)

type Reserve struct {
	// mu serializes whole multi-item attempts so two concurrent checkouts
	// cannot both pass the availability check for the same product.
	mu      sync.Mutex
	checker protocols.AvailabilityChecker
	store   *reservation.Store
	events  protocols.EventPublisher
	logger  protocols.Logger
}

func NewReserve(checker protocols.AvailabilityChecker, store *reservation.Store, events protocols.EventPublisher, logger protocols.Logger) *Reserve {
	return &Reserve{
		checker: checker,
		store:   store,
		events:  events,
		logger:  logger,
	}
}

type Item struct {
	ProductID string
	Quantity  int32
}

type Input struct {
	Items     []Item
	SessionID string
}

type Output struct {
	Success        bool
	ReservationID  string
	ReservedItems  []Item
	ExpiresAt      time.Time
	Error          string
	AvailableStock int32
}

// Reserve holds stock for every requested item under one reservation id. The
// first unavailable item rolls back the holds already taken in this call.
func (r *Reserve) Reserve(ctx context.Context, input Input) Output {
	reservationID := input.SessionID
	if reservationID == "" {
		reservationID = generateReservationID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reservedItems := make([]Item, 0, len(input.Items))
	for _, item := range input.Items {
		avail := r.checker.Check(ctx, item.ProductID, item.Quantity)
		if !avail.Available {
			r.store.ReleaseSession(reservationID)
			return Output{
				Success:        false,
				Error:          unavailableMessage(item, avail),
				AvailableStock: avail.AvailableStock,
			}
		}

		r.store.Add(item.ProductID, item.Quantity, reservationID)
		reservedItems = append(reservedItems, item)
		if r.logger != nil {
			r.logger.Info("item reserved", "productId", item.ProductID, "quantity", item.Quantity, "reservationId", reservationID)
		}
	}

	expiresAt := r.store.ScheduleRelease(reservationID)

	if r.events != nil {
		_ = r.events.Publish(ctx, protocols.EventStockReserved, map[string]any{
			"reservationId": reservationID,
			"items":         reservedItems,
			"expiresAt":     expiresAt,
		})
	}

	return Output{
		Success:       true,
		ReservationID: reservationID,
		ReservedItems: reservedItems,
		ExpiresAt:     expiresAt,
	}
}

func unavailableMessage(item Item, avail protocols.Availability) string {
	if avail.Error != "" {
		return avail.Error
	}
	name := item.ProductID
	if avail.Product != nil && avail.Product.Title != "" {
		name = avail.Product.Title
	}
	return fmt.Sprintf("%s: %s", name, reservation.ErrInsufficientStock.Error())
}

// The id only needs best-effort uniqueness, but the random suffix comes from
// crypto/rand so collisions are not a caller concern.
func generateReservationID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("res_%d", time.Now().UnixMilli())
	}
	return fmt.Sprintf("res_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
