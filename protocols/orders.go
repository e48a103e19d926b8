package protocols

import (
	"context"
	"time"
)

type OrderItem struct {
	ProductID string
	Quantity  int32
}

type OrderRecord struct {
	ReservationID string
	Items         []OrderItem
	Context       map[string]any
	ConfirmedAt   time.Time
}

// OrderArchive keeps a record of confirmed purchases for out-of-band
// reconciliation. Writes are best-effort.
type OrderArchive interface {
	SaveOrder(ctx context.Context, record OrderRecord) error
}
