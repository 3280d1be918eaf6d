package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache はRedisを使ったCache実装です。複数プロセスでサーバを動かす
// 場合にスナップショットキャッシュを共有できます。
// Redisの障害はキャッシュミスとして扱い、呼び出し元には伝播しません。
type RedisCache struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisCache creates a Redis-backed cache. If namespace is empty it
// defaults to "snapshots".
func NewRedisCache(rdb *redis.Client, namespace string) *RedisCache {
	if namespace == "" {
		namespace = "snapshots"
	}
	return &RedisCache{rdb: rdb, namespace: namespace}
}

func (c *RedisCache) key(key string) string {
	return c.namespace + ":" + key
}

// Get はRedisから値を取得します。エラーはミス扱いです。
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}

// Set はベストエフォートで値を保存します。
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", "key", key, "error", err)
	}
}

// NewRedisClient は設定されたアドレスへ接続し、疎通確認まで行います。
func NewRedisClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
