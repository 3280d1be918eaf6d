// Package handler はmarketフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sarahoor/Final-TraDex/internal/api"
	"github.com/sarahoor/Final-TraDex/internal/feature/market/domain/entity"
)

// MarketUsecase はDEX横断の価格テーブル取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketUsecase interface {
	GetMarkets(ctx context.Context, protocols []string, secondsAgo, first int) (*entity.MarketTable, error)
}

// MarketHandler はDEX価格テーブルのHTTPリクエストを処理します。
type MarketHandler struct {
	uc MarketUsecase
}

// NewMarketHandler は指定されたusecaseでMarketHandlerの新しいインスタンスを生成します。
func NewMarketHandler(uc MarketUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

// GetMarketsHandler は複数DEXの価格を集約した表をJSONで返します。
//
// エンドポイント例:
// GET /markets?secondsAgo=3600&first=300&protocols=uniswap,sushiswap
//
// secondsAgoは過去時点の照会（0は現在）、firstは1プロトコルあたりの
// 取得件数、protocolsは対象の絞り込み（空は全プロトコル）です。
func (h *MarketHandler) GetMarketsHandler(c *gin.Context) {
	// 文字列を整数に変換（不正値は0 → usecase側でデフォルトに丸める）
	secondsAgo, _ := strconv.Atoi(c.DefaultQuery("secondsAgo", "0"))
	first, _ := strconv.Atoi(c.DefaultQuery("first", "0"))
	if secondsAgo < 0 {
		secondsAgo = 0
	}

	var protocols []string
	if raw := c.Query("protocols"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				protocols = append(protocols, p)
			}
		}
	}

	table, err := h.uc.GetMarkets(c.Request.Context(), protocols, secondsAgo, first)
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, table)
}
