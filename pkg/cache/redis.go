package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/faculty-realloc-api/pkg/config"
)

// NewRedis returns a configured Redis client. A disabled config yields a nil
// client; callers treat that as "no cache, no lock".
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
