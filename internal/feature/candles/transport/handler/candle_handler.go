// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sarahoor/Final-TraDex/internal/api"
	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/shared/symbols"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol, interval string, days int) (entity.History, error)
	GetMergedCandles(ctx context.Context, symbol, interval string, days int) (entity.History, error)
}

// MockProvider は実ソースを迂回する決定的なローソク足生成器です。
type MockProvider interface {
	FetchOHLC(ctx context.Context, symbol, interval string, days int) (entity.History, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc   CandlesUsecase
	mock MockProvider
}

// NewCandlesHandler は指定されたusecaseとモック生成器でCandlesHandlerの
// 新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase, mock MockProvider) *CandlesHandler {
	return &CandlesHandler{uc: uc, mock: mock}
}

// GetCandlesHandler はシンボルと時間間隔を受け取り、ローソク足データをJSONで返します。
//
// エンドポイント例:
// GET /candles/:symbol?interval=1h&days=30&mock=0&merge=0
//
// mock=1は上流を一切呼ばず決定的なモック系列を返します。
// merge=1は全ソースへ並行で問い合わせた統合系列を返します。
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	symbol := symbols.Normalize(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbol is required"})
		return
	}

	// 未指定の場合はデフォルト値を使用
	interval := c.DefaultQuery("interval", "1h")
	daysStr := c.DefaultQuery("days", "30")
	// 文字列を整数に変換（不正値はusecaseレイヤーでデフォルトに丸める）
	days, _ := strconv.Atoi(daysStr)

	var (
		candles entity.History
		err     error
	)
	switch {
	case c.Query("mock") == "1":
		candles, err = h.mock.FetchOHLC(c.Request.Context(), symbol, interval, days)
	case c.Query("merge") == "1":
		candles, err = h.uc.GetMergedCandles(c.Request.Context(), symbol, interval, days)
	default:
		candles, err = h.uc.GetCandles(c.Request.Context(), symbol, interval, days)
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	if candles == nil {
		candles = entity.History{}
	}
	c.JSON(http.StatusOK, candles)
}
