package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func notifyChannel(userID int64) string {
	return fmt.Sprintf("notify:%d", userID)
}

// PublishNotification fans a notification payload out to any live streams
// for the user. Fire-and-forget: nobody listening is not an error.
func (c *Client) PublishNotification(ctx context.Context, userID int64, payload []byte) error {
	return c.rdb.Publish(ctx, notifyChannel(userID), payload).Err()
}

// SubscribeNotifications opens a pub/sub subscription for one user's
// notification channel. The caller owns the returned subscription and must
// close it when the stream ends.
func (c *Client) SubscribeNotifications(ctx context.Context, userID int64) *redis.PubSub {
	return c.rdb.Subscribe(ctx, notifyChannel(userID))
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// GetIdempotencyKey returns the cached value for an idempotency key, or an
// empty string when the key is unknown.
func (c *Client) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}
