package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const runLockPrefix = "reallocation:lock:"

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RunLockRepository serializes reallocation runs per leave request with a
// Redis SET NX lock. Without a client every acquire succeeds.
type RunLockRepository struct {
	client *redis.Client
}

// NewRunLockRepository constructs a RunLockRepository.
func NewRunLockRepository(client *redis.Client) *RunLockRepository {
	return &RunLockRepository{client: client}
}

// Acquire tries to take the lock for key. It returns a release func when the
// lock was obtained and ok=false when another holder owns it.
func (r *RunLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	if r.client == nil {
		return func(context.Context) error { return nil }, true, nil
	}

	token := uuid.NewString()
	fullKey := runLockPrefix + key
	acquired, err := r.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire run lock %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release = func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release run lock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}
