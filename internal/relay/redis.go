package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/oshokin/order-siren/internal/domain/order"
)

// PendingKey is the redis key holding the single pending decision slot.
const PendingKey = "order-siren:pending"

// RedisStore keeps the pending decision slot in redis, so the decision
// crosses process and host boundaries to whichever consumer activates next.
type RedisStore struct {
	// client is the shared redis connection.
	client *redis.Client
}

// NewRedisStore creates a store on the given redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put stores the decision with the single-slot overwrite rules.
func (r *RedisStore) Put(ctx context.Context, pending *order.PendingDecision) error {
	if pending == nil {
		return nil
	}

	current, err := r.client.Get(ctx, PendingKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read pending slot: %w", err)
	}

	if err == nil {
		var existing order.PendingDecision
		// Same-order redelivery attempts are idempotent no-ops; a
		// corrupt slot is overwritten.
		if json.Unmarshal([]byte(current), &existing) == nil && existing.OrderID == pending.OrderID {
			return nil
		}
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending decision: %w", err)
	}

	if err := r.client.Set(ctx, PendingKey, data, 0).Err(); err != nil {
		return fmt.Errorf("write pending slot: %w", err)
	}

	return nil
}

// Take returns the stored decision using GETDEL, which clears the slot
// atomically with the read on the server side.
func (r *RedisStore) Take(ctx context.Context) (*order.PendingDecision, error) {
	data, err := r.client.GetDel(ctx, PendingKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("take pending slot: %w", err)
	}

	var pending order.PendingDecision
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		// A corrupt slot is dropped rather than wedging the relay.
		return nil, nil
	}

	return &pending, nil
}
