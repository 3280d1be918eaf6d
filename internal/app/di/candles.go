// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"net/http"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/adapters/binance"
	"github.com/sarahoor/Final-TraDex/internal/feature/candles/adapters/coingecko"
	"github.com/sarahoor/Final-TraDex/internal/feature/candles/adapters/tokenapi"
	"github.com/sarahoor/Final-TraDex/internal/feature/candles/usecase"
	"github.com/sarahoor/Final-TraDex/internal/platform/config"
)

// NewHistoryUsecase はローソク足のフォールバックチェーンを組み立てます。
// チェーンの優先順はBinance → CoinGeckoです。Token APIはトークンが設定
// されている場合のみ有効で、未設定時はアドレス照会が設定エラーになります
// （サーバ自体は起動します）。
func NewHistoryUsecase(cfg config.Config, httpClient *http.Client) *usecase.HistoryUsecase {
	chain := []usecase.HistoryProvider{
		binance.NewClient(cfg.BinanceBaseURL, httpClient),
		coingecko.NewClient(cfg.CoinGeckoBaseURL, httpClient),
	}

	var address usecase.HistoryProvider
	if c, err := tokenapi.NewClient(cfg.TokenAPIBaseURL, cfg.TokenAPIToken, httpClient); err != nil {
		slog.Warn("Token API disabled, contract address lookups will fail", "error", err)
	} else {
		address = c
	}

	return usecase.NewHistoryUsecase(chain, address)
}
