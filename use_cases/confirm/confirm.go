package confirm

import (
	"context"
	"fmt"
	"time"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/protocols"
)

type Confirm struct {
	catalog     protocols.CatalogGateway
	store       *reservation.Store
	idempotency protocols.IdempotencyGateway
	orders      protocols.OrderArchive
	events      protocols.EventPublisher
	logger      protocols.Logger
	clock       protocols.Clock
}

func NewConfirm(
	catalog protocols.CatalogGateway,
	store *reservation.Store,
	idempotency protocols.IdempotencyGateway,
	orders protocols.OrderArchive,
	events protocols.EventPublisher,
	logger protocols.Logger,
	clock protocols.Clock,
) *Confirm {
	return &Confirm{
		catalog:     catalog,
		store:       store,
		idempotency: idempotency,
		orders:      orders,
		events:      events,
		logger:      logger,
		clock:       clock,
	}
}

type Input struct {
	ReservationID string
	Order         map[string]any
}

type UpdatedItem struct {
	ProductID string
	Quantity  int32
}

type Output struct {
	Success      bool
	UpdatedItems []UpdatedItem
	Error        string
}

// Confirm turns a reservation into a permanent stock decrement. Decrements
// are applied per item with no compensation: a failure partway through
// leaves earlier decrements in place and surfaces the failing product, so
// retries are keyed by the reservation id through the idempotency gateway.
func (c *Confirm) Confirm(ctx context.Context, input Input) Output {
	if c.idempotency != nil {
		result, err := c.idempotency.ReserveKey(ctx, input.ReservationID)
		if err != nil {
			c.logError("failed to check confirmation idempotency", "reservationId", input.ReservationID, "error", err)
			return Output{Success: false, Error: err.Error()}
		}
		if result != nil {
			return Output{Success: true}
		}
	}

	success := false
	defer func() {
		if c.idempotency == nil {
			return
		}
		if success {
			_ = c.idempotency.MarkSuccess(ctx, input.ReservationID)
		} else {
			_ = c.idempotency.MarkFailure(ctx, input.ReservationID)
		}
	}()

	if c.catalog == nil {
		return Output{Success: false, Error: reservation.ErrRemoteUnavailable.Error()}
	}

	items := c.store.SessionItems(input.ReservationID)
	if len(items) == 0 {
		c.logError("purchase confirmation failed", "reservationId", input.ReservationID, "error", reservation.ErrNoReservation)
		return Output{Success: false, Error: reservation.ErrNoReservation.Error()}
	}

	updated := make([]UpdatedItem, 0, len(items))
	for _, item := range items {
		if err := c.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			c.logError("failed to update stock", "productId", item.ProductID, "error", err)
			return Output{
				Success: false,
				Error:   fmt.Sprintf("%s for product %s", reservation.ErrStockUpdateFailed.Error(), item.ProductID),
			}
		}
		updated = append(updated, UpdatedItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	// the decrement is permanent now, the hold is no longer needed
	c.store.ReleaseSession(input.ReservationID)

	if c.orders != nil {
		record := protocols.OrderRecord{
			ReservationID: input.ReservationID,
			Items:         orderItems(updated),
			Context:       input.Order,
			ConfirmedAt:   c.now(),
		}
		if err := c.orders.SaveOrder(ctx, record); err != nil {
			if c.logger != nil {
				c.logger.Warn("failed to archive confirmed order", "reservationId", input.ReservationID, "error", err)
			}
		}
	}

	if c.events != nil {
		_ = c.events.Publish(ctx, protocols.EventPurchaseConfirmed, map[string]any{
			"reservationId": input.ReservationID,
			"items":         updated,
		})
	}

	if c.logger != nil {
		c.logger.Info("purchase confirmed", "reservationId", input.ReservationID, "itemCount", len(updated))
	}

	success = true
	return Output{Success: true, UpdatedItems: updated}
}

func (c *Confirm) logError(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}

func (c *Confirm) now() time.Time {
	if c.clock != nil {
		return c.clock.Now()
	}
	return time.Now()
}

func orderItems(updated []UpdatedItem) []protocols.OrderItem {
	items := make([]protocols.OrderItem, 0, len(updated))
	for _, u := range updated {
		items = append(items, protocols.OrderItem{ProductID: u.ProductID, Quantity: u.Quantity})
	}
	return items
}
