package main

import (
	"log/slog"
	"os"

	"github.com/sarahoor/Final-TraDex/internal/app/di"
	"github.com/sarahoor/Final-TraDex/internal/app/router"
	"github.com/sarahoor/Final-TraDex/internal/feature/candles/adapters/mock"
	candlehandler "github.com/sarahoor/Final-TraDex/internal/feature/candles/transport/handler"
	markethandler "github.com/sarahoor/Final-TraDex/internal/feature/market/transport/handler"
	"github.com/sarahoor/Final-TraDex/internal/platform/config"
	platformhttp "github.com/sarahoor/Final-TraDex/internal/platform/http"
)

func main() {
	cfg := config.Load()

	// 上流呼び出しは全アダプタで1つのHTTPクライアントを共有する
	httpClient := platformhttp.NewHTTPClient(cfg.HTTPTimeout)

	// Usecase
	historyUC := di.NewHistoryUsecase(cfg, httpClient)
	marketUC := di.NewMarketUsecase(cfg, httpClient, di.NewSnapshotCache(cfg))

	// Handler
	candlesH := candlehandler.NewCandlesHandler(historyUC, mock.NewGenerator())
	marketH := markethandler.NewMarketHandler(marketUC)

	// ルータ生成
	r := router.NewRouter(candlesH, marketH)

	slog.Info("starting server", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
