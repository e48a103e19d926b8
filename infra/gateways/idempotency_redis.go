package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harvicreates/inventory/protocols"
)

const (
	idempotencyKeyPrefix = "idempotency:confirm:"
	idempotencyTTL       = 24 * time.Hour
)

type idempotencyRedisState struct {
	Status string                          `json:"status"`
	Result *protocols.IdempotencyKeyResult `json:"result,omitempty"`
}

// IdempotencyGatewayRedis records confirmation attempts in Redis so a retry
// of an already-confirmed reservation does not decrement stock twice.
type IdempotencyGatewayRedis struct {
	client *redis.Client
}

func NewIdempotencyGatewayRedis(client *redis.Client) *IdempotencyGatewayRedis {
	return &IdempotencyGatewayRedis{client: client}
}

func (g *IdempotencyGatewayRedis) key(idempotencyKey string) string {
	return idempotencyKeyPrefix + idempotencyKey
}

func (g *IdempotencyGatewayRedis) ReserveKey(ctx context.Context, idempotencyKey string) (*protocols.IdempotencyKeyResult, error) {
	k := g.key(idempotencyKey)

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := g.client.Get(ctx, k).Bytes()
		if err == redis.Nil {
			state := idempotencyRedisState{Status: "processing"}
			raw, _ := json.Marshal(state)
			_, err := g.client.SetArgs(ctx, k, raw, redis.SetArgs{Mode: "NX", TTL: idempotencyTTL}).Result()
			if err == redis.Nil {
				// lost the race for the key, re-read it
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var state idempotencyRedisState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}

		switch state.Status {
		case "success":
			return state.Result, nil
		case "processing":
			return nil, errors.New("idempotency key is already being processed")
		default:
			_ = g.client.Del(ctx, k).Err()
			newState := idempotencyRedisState{Status: "processing"}
			raw, _ := json.Marshal(newState)
			if err := g.client.Set(ctx, k, raw, idempotencyTTL).Err(); err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
	}
}

func (g *IdempotencyGatewayRedis) MarkFailure(ctx context.Context, idempotencyKey string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return g.client.Del(ctx, g.key(idempotencyKey)).Err()
}

func (g *IdempotencyGatewayRedis) MarkSuccess(ctx context.Context, idempotencyKey string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	state := idempotencyRedisState{
		Status: "success",
		Result: &protocols.IdempotencyKeyResult{Success: true, Error: nil},
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return g.client.Set(ctx, g.key(idempotencyKey), raw, idempotencyTTL).Err()
}
