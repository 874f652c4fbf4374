package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// processingMarker reserves a key while the first attempt is still running.
const processingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore on Redis. Keys are
// scoped per tenant so one tenant can never replay another's response.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func idempotencyKey(tenantID, key string) string {
	return "idempotency:" + tenantID + ":" + key
}

// CheckAndSet returns the stored response when the tenant's key is already
// known. Otherwise it reserves the key, with the given response or a
// processing marker, so concurrent retries observe the first attempt.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	k := idempotencyKey(tenantID, key)

	value := []byte(processingMarker)
	if response != nil {
		value = response
	}
	reserved, err := s.client.SetNX(ctx, k, value, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if reserved {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, k).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, nil, err
	}
	return true, existing, nil
}

// Update overwrites the tenant's key with the final response for replay.
func (s *IdempotencyStore) Update(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyKey(tenantID, key), response, ttl).Err()
}
