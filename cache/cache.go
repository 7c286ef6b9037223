// Package cache implements the Cache (C1): a key/value store mapping a
// request fingerprint to a prior scrape result, with TTL. Adapted from the
// teacher's in-memory cache (random eviction, periodic cleanup), extended
// with a Store interface so a Redis backend (spec §6's external cache
// interface) can sit behind the same contract.
package cache

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/purify-crawl/purify/models"
)

// Store is the backend-agnostic cache contract spec §4.1 defines:
// get/put/invalidate over a fingerprint key. Backend failures must never
// be fatal to the caller — a Get error is reported as a miss.
type Store interface {
	Get(key string) (*models.ScrapeResponse, bool)
	Put(key string, resp *models.ScrapeResponse, ttl time.Duration)
	Invalidate(key string)
	Close() error
}

// entry holds a cached response with its expiry.
type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is an in-memory Store. Safe for concurrent use. Used as the
// default backend when REDIS_URL is unset.
type Memory struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	stopped    chan struct{}
}

// NewMemory creates a Memory store with the given maximum entry count.
// A background goroutine evicts expired entries every 5 minutes.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	c := &Memory{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		stopped:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a cached response if present and unexpired.
func (c *Memory) Get(key string) (*models.ScrapeResponse, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}

	var resp models.ScrapeResponse
	if err := json.Unmarshal(e.payload, &resp); err != nil {
		slog.Warn("cache: corrupt entry, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return &resp, true
}

// Put stores a response with the given TTL. Per spec §4.1, callers must
// only store success=true results (enforced by the Scraper, not here).
func (c *Memory) Put(key string, resp *models.ScrapeResponse, ttl time.Duration) {
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("cache: failed to marshal response, skipping store", "key", key, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{payload: payload, expiresAt: time.Now().Add(ttl)}
}

// Invalidate removes a single entry.
func (c *Memory) Invalidate(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Close stops the background cleanup loop.
func (c *Memory) Close() error {
	close(c.stopped)
	return nil
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Memory) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopped:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.store {
				if now.After(e.expiresAt) {
					delete(c.store, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
