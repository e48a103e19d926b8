package reservation

import "errors"

var (
	ErrRemoteUnavailable = errors.New("catalog service unavailable")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNoReservation     = errors.New("no valid reservation found")
	ErrStockUpdateFailed = errors.New("stock update failed")
)
