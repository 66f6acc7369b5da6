package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tradecoach/internal/models"
)

// keyPrefix namespaces sentiment cache entries.
const keyPrefix = "sentiment:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache is a Provider backed by the collaborator's Redis cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheWithClient wraps an existing client. Used by tests.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Cached returns the cached sentiment snapshot for a symbol, or a miss when
// nothing is cached or the entry does not decode.
func (r *RedisCache) Cached(ctx context.Context, symbol string) (*models.SentimentSnapshot, bool, error) {
	raw, err := r.client.Get(ctx, keyFor(symbol)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sentiment lookup for %s: %w", symbol, err)
	}

	var snap models.SentimentSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		// A corrupt cache entry is a miss, not a failure.
		return nil, false, nil
	}
	if snap.Symbol == "" {
		snap.Symbol = strings.ToUpper(symbol)
	}
	return &snap, true, nil
}

// Put caches a snapshot with a TTL. The sentiment collaborator owns writes
// in production; this exists for tests and backfills.
func (r *RedisCache) Put(ctx context.Context, snap models.SentimentSnapshot, ttl time.Duration) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyFor(snap.Symbol), raw, ttl).Err()
}

// Ping checks if Redis is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func keyFor(symbol string) string {
	return keyPrefix + strings.ToUpper(symbol)
}
