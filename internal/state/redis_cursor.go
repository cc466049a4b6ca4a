package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cursorKey = "telegram:updates:offset"

// RedisCursor keeps the polling cursor in Redis so already-consumed
// updates stay consumed across restarts.
type RedisCursor struct {
	client *redis.Client
}

// NewRedisCursor creates a Redis-backed cursor store
func NewRedisCursor(addr string) (*RedisCursor, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCursor{client: client}, nil
}

// Load returns the last stored offset, zero when none was stored yet
func (c *RedisCursor) Load(ctx context.Context) (int, error) {
	val, err := c.client.Get(ctx, cursorKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	offset, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt cursor value %q: %w", val, err)
	}
	return offset, nil
}

// Store records the offset
func (c *RedisCursor) Store(ctx context.Context, offset int) error {
	return c.client.Set(ctx, cursorKey, offset, 0).Err()
}

// Close releases the Redis connection
func (c *RedisCursor) Close() error {
	return c.client.Close()
}
