/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const displayNamePrefix = "puzzlebox:user:name:"

// Cached fronts another Directory with a Redis cache for display names.
// Concurrent misses for one user share a single backend query. Host lookups
// and deletes go straight to the backend.
//
// Redis failures are logged and fall through to the backend.
type Cached struct {
	backend Directory
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

func NewCached(backend Directory, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}

	return &Cached{
		backend: backend,
		client:  client,
		ttl:     ttl,
		logger:  logger,
	}
}

// OpenRedis parses redisURL and verifies the server answers.
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func (c *Cached) RoomHost(ctx context.Context, roomID string) (string, error) {
	return c.backend.RoomHost(ctx, roomID)
}

// DeleteRoom does not touch the cache, which holds no room data.
func (c *Cached) DeleteRoom(ctx context.Context, roomID string) error {
	return c.backend.DeleteRoom(ctx, roomID)
}

func (c *Cached) DisplayName(ctx context.Context, userID string) (string, error) {
	key := displayNamePrefix + userID

	name, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return name, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("display name cache read failed", "user", userID, "error", err)
	}

	v, err, _ := c.group.Do(userID, func() (any, error) {
		name, err := c.backend.DisplayName(ctx, userID)
		if err != nil {
			return "", err
		}

		if err := c.client.Set(ctx, key, name, c.ttl).Err(); err != nil {
			c.logger.Warn("display name cache write failed", "user", userID, "error", err)
		}

		return name, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}
