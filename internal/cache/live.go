// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// live.go provides a Valkey-backed cache of the published content document.
// Public visitors read the document far more often than editors publish it,
// so the serving path caches the serialized document and publish invalidates
// the single entry.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// liveKey is the Valkey key for the cached published document.
	liveKey = "live-content"

	// DefaultLiveTTL is how long the published document stays cached.
	DefaultLiveTTL = 5 * time.Minute
)

// LiveCache caches the serialized published content document in Valkey.
type LiveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLiveCache creates a published-document cache backed by the given
// Valkey client. A zero ttl applies DefaultLiveTTL.
func NewLiveCache(client *redis.Client, ttl time.Duration) *LiveCache {
	if ttl == 0 {
		ttl = DefaultLiveTTL
	}
	return &LiveCache{client: client, ttl: ttl}
}

// Get retrieves the cached document bytes. Returns (nil, false) on miss.
func (lc *LiveCache) Get(ctx context.Context) ([]byte, bool) {
	val, err := lc.client.Get(ctx, liveKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("live cache get error", "error", err)
		return nil, false
	}
	return val, true
}

// Set stores the serialized document with the configured TTL.
func (lc *LiveCache) Set(ctx context.Context, data []byte) {
	if err := lc.client.Set(ctx, liveKey, data, lc.ttl).Err(); err != nil {
		slog.Warn("live cache set error", "error", err)
	}
}

// Invalidate removes the cached document. Called after every successful
// publish so visitors never see a stale document past the commit.
func (lc *LiveCache) Invalidate(ctx context.Context) {
	if err := lc.client.Del(ctx, liveKey).Err(); err != nil {
		slog.Warn("live cache invalidate error", "error", err)
	}
	slog.Debug("live cache invalidated")
}
