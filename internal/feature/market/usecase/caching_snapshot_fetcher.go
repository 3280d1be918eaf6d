package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sarahoor/Final-TraDex/internal/feature/market/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/platform/cache"
)

// CachingSnapshotFetcher はSnapshotFetcherをキャッシュでデコレートします。
// 下層のフェッチャーを変更せずに透過的にキャッシュを足すデコレータです。
// キーは(protocol, secondsAgo, first)で、ヒットは上流呼び出しを完全に
// 短絡します。失敗はキャッシュしません。
type CachingSnapshotFetcher struct {
	inner SnapshotFetcher
	store cache.Cache
	ttl   time.Duration
}

// NewCachingSnapshotFetcher decorates a SnapshotFetcher with caching.
// If ttl is 0, it defaults to 60 seconds (the snapshot freshness window).
func NewCachingSnapshotFetcher(store cache.Cache, ttl time.Duration, inner SnapshotFetcher) *CachingSnapshotFetcher {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CachingSnapshotFetcher{inner: inner, store: store, ttl: ttl}
}

// Protocol returns the wrapped fetcher's protocol identifier.
func (c *CachingSnapshotFetcher) Protocol() string { return c.inner.Protocol() }

// FetchSnapshot はキャッシュを確認し、ミス時のみ上流へ取りに行きます。
func (c *CachingSnapshotFetcher) FetchSnapshot(ctx context.Context, secondsAgo, first int) (*entity.Snapshot, error) {
	// キャッシュが構成されていなければ素通し
	if c.store == nil {
		return c.inner.FetchSnapshot(ctx, secondsAgo, first)
	}

	key := c.cacheKey(secondsAgo, first)

	// 1) キャッシュ確認
	if b, ok := c.store.Get(ctx, key); ok {
		var snap entity.Snapshot
		if err := json.Unmarshal(b, &snap); err == nil {
			return &snap, nil
		}
		// 壊れたエントリは無視して取り直す
	}

	// 2) 上流へフォールバック
	snap, err := c.inner.FetchSnapshot(ctx, secondsAgo, first)
	if err != nil {
		return nil, err
	}

	// 3) ベストエフォートで保存
	if b, err := json.Marshal(snap); err == nil {
		c.store.Set(ctx, key, b, c.ttl)
	}
	return snap, nil
}

func (c *CachingSnapshotFetcher) cacheKey(secondsAgo, first int) string {
	return fmt.Sprintf("%s:%d:%d", c.inner.Protocol(), secondsAgo, first)
}
