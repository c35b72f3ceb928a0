// Package configdb writes SONiC CONFIG_DB entries over Redis, reached
// through an SSH port-forwarding tunnel into the device.
package configdb

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisAddr is the CONFIG_DB Redis endpoint inside the device.
const RedisAddr = "127.0.0.1:6379"

// Client wraps a Redis client for config_db access. Entries are hashes
// keyed "TABLE|KEY".
type Client struct {
	client *redis.Client
}

// NewClient creates a config_db client for the given address, normally a
// tunnel's LocalAddr.
func NewClient(addr string) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   4, // CONFIG_DB
		}),
	}
}

// Ping tests the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Set writes a table entry. If fields is empty, a "NULL":"NULL" sentinel is
// written so the Redis key is actually created (SONiC convention for
// field-less entries like interface IP keys). All fields go in a single
// HSET so consumers watching keyspace notifications see complete state.
func (c *Client) Set(ctx context.Context, table, key string, fields map[string]string) error {
	redisKey := fmt.Sprintf("%s|%s", table, key)
	if len(fields) == 0 {
		return c.client.HSet(ctx, redisKey, "NULL", "NULL").Err()
	}
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return c.client.HSet(ctx, redisKey, args...).Err()
}

// Get reads a table entry.
func (c *Client) Get(ctx context.Context, table, key string) (map[string]string, error) {
	redisKey := fmt.Sprintf("%s|%s", table, key)
	return c.client.HGetAll(ctx, redisKey).Result()
}

// Exists checks if a table entry exists.
func (c *Client) Exists(ctx context.Context, table, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s|%s", table, key)
	n, err := c.client.Exists(ctx, redisKey).Result()
	return n > 0, err
}
