package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

const DefaultCacheKey = "treasurehunt:hunts"

type cachedHunt struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// RedisCache keeps the hunt listing as one JSON value.
type RedisCache struct {
	client *redis.Client
	key    string
}

func NewRedisCache(client *redis.Client, key string) *RedisCache {
	if key == "" {
		key = DefaultCacheKey
	}
	return &RedisCache{client: client, key: key}
}

func (c *RedisCache) Get(ctx context.Context) ([]treasurehunt.Hunt, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", c.key, err)
	}

	var cached []cachedHunt
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", c.key, err)
	}
	hunts := make([]treasurehunt.Hunt, len(cached))
	for i, h := range cached {
		hunts[i] = treasurehunt.Hunt{UUID: h.UUID, Name: h.Name}
	}
	return hunts, true, nil
}

func (c *RedisCache) Set(ctx context.Context, hunts []treasurehunt.Hunt, ttl time.Duration) error {
	cached := make([]cachedHunt, len(hunts))
	for i, h := range hunts {
		cached[i] = cachedHunt{UUID: h.UUID, Name: h.Name}
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encoding hunts: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", c.key, err)
	}
	return nil
}
