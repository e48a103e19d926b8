package protocols

import "context"

type Availability struct {
	Available      bool
	AvailableStock int32
	CurrentStock   int32
	Reserved       int32
	Product        *Product
	Error          string
}

type AvailabilityChecker interface {
	Check(ctx context.Context, productID string, quantity int32) Availability
}
