package protocols

import "context"

type IdempotencyKeyResult struct {
	Success bool
	Error   error
}

// IdempotencyGateway guards an operation against duplicate execution.
// ReserveKey returns a non-nil result when the key already completed
// successfully, and (nil, nil) when the caller owns the key and should run
// the operation.
type IdempotencyGateway interface {
	ReserveKey(ctx context.Context, key string) (*IdempotencyKeyResult, error)
	MarkSuccess(ctx context.Context, key string) error
	MarkFailure(ctx context.Context, key string) error
}
