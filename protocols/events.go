package protocols

import "context"

const (
	EventStockReserved       = "stock.reserved"
	EventReservationReleased = "reservation.released"
	EventPurchaseConfirmed   = "purchase.confirmed"
)

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}
