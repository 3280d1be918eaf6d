// Package router はHTTPルーティングを構成します。
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	candlehandler "github.com/sarahoor/Final-TraDex/internal/feature/candles/transport/handler"
	markethandler "github.com/sarahoor/Final-TraDex/internal/feature/market/transport/handler"
	platformhandler "github.com/sarahoor/Final-TraDex/internal/platform/http/handler"
)

// NewRouter は全エンドポイントを配線したginエンジンを返します。
// ダッシュボードはブラウザから直接叩くため、CORSは全オリジン許可です。
func NewRouter(candles *candlehandler.CandlesHandler, market *markethandler.MarketHandler) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)

	// ローソク足履歴（シンボルまたはコントラクトアドレス）
	r.GET("/candles/:symbol", candles.GetCandlesHandler)
	// DEX横断の価格テーブル
	r.GET("/markets", market.GetMarketsHandler)

	return r
}
