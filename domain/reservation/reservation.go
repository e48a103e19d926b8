package reservation

import "time"

// Reservation is one temporary hold of stock taken during checkout.
// Holds for a single checkout attempt share a SessionID.
type Reservation struct {
	ProductID string
	Quantity  int32
	CreatedAt time.Time
	SessionID string
}

type ReservedItem struct {
	ProductID string
	Quantity  int32
}

type Status struct {
	Exists        bool
	ItemCount     int32
	ExpiresAt     time.Time
	TimeRemaining time.Duration
	Expired       bool
}
