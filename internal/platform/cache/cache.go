// Package cache はスナップショットキャッシュの抽象とその実装を提供します。
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-value cache with per-entry TTL. Implementations must be
// safe for concurrent use. Get returns false for a missing or expired entry.
//
// The interface deliberately hides the eviction policy so the memory
// implementation can grow an LRU later without touching the adapter layer.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type memoryEntry struct {
	value  []byte
	expiry time.Time
}

// MemoryCache はプロセス内のTTL付きキー値キャッシュです。
// 明示的な削除は行わず、期限切れエントリはGet時と上書き時に消えます。
// 実運用ではキーの種類が少ないため、これで十分です。
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time // テストで差し替えるための時計
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get は未期限のエントリを返します。期限切れはその場で削除します。
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiry) {
		c.mu.Lock()
		// 再確認してから削除（別のSetと競合した場合に新しい値を消さないため）
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiry) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set は値を上書き保存します。ttlが0以下の場合は何もしません。
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiry: c.now().Add(ttl)}
	c.mu.Unlock()
}
