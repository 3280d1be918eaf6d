package di

import (
	"log/slog"
	"net/http"

	"github.com/sarahoor/Final-TraDex/internal/feature/market/adapters/subgraph"
	"github.com/sarahoor/Final-TraDex/internal/feature/market/usecase"
	"github.com/sarahoor/Final-TraDex/internal/platform/cache"
	"github.com/sarahoor/Final-TraDex/internal/platform/config"
	"github.com/sarahoor/Final-TraDex/internal/platform/thegraph"
)

// NewMarketUsecase は各DEXのスナップショットフェッチャーをキャッシュ付きで
// 組み立てます。GRAPH_API_KEY未設定時はフェッチャーなしで返し、/marketsは
// 設定エラーを返します（サーバ自体は起動します）。
func NewMarketUsecase(cfg config.Config, httpClient *http.Client, store cache.Cache) *usecase.MarketUsecase {
	gql, err := thegraph.NewClient(cfg.GraphGatewayURL, cfg.GraphAPIKey, httpClient)
	if err != nil {
		slog.Warn("market feature disabled", "error", err)
		return usecase.NewMarketUsecase(nil)
	}

	protocols := subgraph.DefaultProtocols(cfg.SubgraphIDs)
	fetchers := make([]usecase.SnapshotFetcher, 0, len(protocols))
	for _, proto := range protocols {
		fetchers = append(fetchers, usecase.NewCachingSnapshotFetcher(
			store, cfg.SnapshotTTL, subgraph.NewFetcher(proto, gql),
		))
	}
	return usecase.NewMarketUsecase(fetchers)
}

// NewSnapshotCache はスナップショット用のキャッシュを選びます。
// Redisが設定され疎通できればRedis、そうでなければプロセス内キャッシュです。
func NewSnapshotCache(cfg config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache()
	}
	rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Warn("Redis unavailable, falling back to in-memory cache")
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(rdb, "snapshots")
}
