package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
)

const keyPrefix = "c4:search:"

// Connect dials Redis and pings it. When the ping fails the client is closed
// and nil is returned: the caller carries on without a result cache.
func Connect(ctx context.Context, addr, password string, logger zerolog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("could not connect to redis, running without result cache")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", addr).Msg("redis connected")
	return client
}

// ResultCache keeps search results in Redis as JSON with a fixed TTL.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func (r *ResultCache) Get(ctx context.Context, key string) (bot.SearchResult, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return bot.SearchResult{}, false, nil
	}
	if err != nil {
		return bot.SearchResult{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var res bot.SearchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return bot.SearchResult{}, false, fmt.Errorf("decode cached result %s: %w", key, err)
	}
	return res, true, nil
}

func (r *ResultCache) Set(ctx context.Context, key string, res bot.SearchResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", key, err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
