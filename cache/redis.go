package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/purify-crawl/purify/models"
	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a redis://host:port URI, per spec §6's
// external cache-backend interface (GET/SET-with-TTL/DEL on string keys
// holding UTF-8 JSON values). Any transport failure is treated as a miss,
// never surfaced to the caller, per spec §7's CacheError policy.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to a Redis instance at the given URI
// (e.g. "redis://host:6379/0").
func NewRedis(uri string) (*Redis, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	return &Redis{client: redis.NewClient(opt)}, nil
}

// Get retrieves a cached response. Any Redis error (including a miss or a
// connection failure) is reported as a miss.
func (r *Redis) Get(key string) (*models.ScrapeResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("cache(redis): get failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}

	var resp models.ScrapeResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		slog.Warn("cache(redis): corrupt entry, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return &resp, true
}

// Put stores a response with the given TTL. Errors are logged, never
// propagated.
func (r *Redis) Put(key string, resp *models.ScrapeResponse, ttl time.Duration) {
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("cache(redis): failed to marshal response", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		slog.Warn("cache(redis): set failed", "key", key, "error", err)
	}
}

// Invalidate deletes a key. Errors are logged, never propagated.
func (r *Redis) Invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("cache(redis): del failed", "key", key, "error", err)
	}
}

// Close closes the underlying client connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
