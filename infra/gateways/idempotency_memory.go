package gateways

import (
	"context"
	"errors"
	"sync"

	"github.com/harvicreates/inventory/protocols"
)

type IdempotencyGatewayMemory struct {
	mutex           sync.RWMutex
	idempotencyKeys map[string]*idempotencyState
}

type idempotencyState struct {
	Status string
	Result *protocols.IdempotencyKeyResult
}

func NewIdempotencyGatewayMemory() *IdempotencyGatewayMemory {
	return &IdempotencyGatewayMemory{
		idempotencyKeys: make(map[string]*idempotencyState),
	}
}

func (g *IdempotencyGatewayMemory) ReserveKey(ctx context.Context, idempotencyKey string) (*protocols.IdempotencyKeyResult, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	state, exists := g.idempotencyKeys[idempotencyKey]
	if exists {
		if state.Status == "success" {
			return state.Result, nil
		}
		if state.Status == "processing" {
			return nil, errors.New("idempotency key is already being processed")
		}
		delete(g.idempotencyKeys, idempotencyKey)
	}

	g.idempotencyKeys[idempotencyKey] = &idempotencyState{
		Status: "processing",
	}
	return nil, nil
}

func (g *IdempotencyGatewayMemory) MarkFailure(ctx context.Context, idempotencyKey string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.idempotencyKeys, idempotencyKey)
	return nil
}

func (g *IdempotencyGatewayMemory) MarkSuccess(ctx context.Context, idempotencyKey string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if state, exists := g.idempotencyKeys[idempotencyKey]; exists {
		state.Status = "success"
		state.Result = &protocols.IdempotencyKeyResult{
			Success: true,
			Error:   nil,
		}
	}
	return nil
}
