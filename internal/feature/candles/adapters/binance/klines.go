// Package binance はBinanceの/api/v3/klinesからローソク足を取得するアダプタです。
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/platform/upstream"
)

const source = "binance"

// maxLimit はklinesエンドポイントの1リクエスト最大件数です。
const maxLimit = 1000

// intervalSteps はこのアダプタが受け付ける時間間隔と秒数の対応です。
// 未知の間隔は1時間足にフォールバックします。
var intervalSteps = map[string]int64{
	"1m":  60,
	"5m":  300,
	"15m": 900,
	"1h":  3600,
	"4h":  14400,
	"1d":  86400,
}

// Client はBinance klines APIのクライアントです。
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient は指定されたベースURLとHTTPクライアントでClientを生成します。
func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{baseURL: baseURL, client: client}
}

// Name returns the provider identifier used in logs and error reports.
func (c *Client) Name() string { return source }

// FetchOHLC はUSDT建てのklinesを取得してHistoryへ変換します。
//
// Binanceのレスポンスは [openTime(ms), open, high, low, close, volume, ...]
// の配列で、数値が文字列として入るため明示的にfloatへ変換します。
// タイムスタンプはミリ秒なので切り捨て除算で秒へ落とします。
func (c *Client) FetchOHLC(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
	step, ok := intervalSteps[interval]
	if !ok {
		slog.Debug("unknown interval, defaulting to 1h", "provider", source, "interval", interval)
		interval, step = "1h", 3600
	}

	limit := int64(days) * 86400 / step
	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = 1
	}

	q := url.Values{}
	q.Set("symbol", symbol+"USDT")
	q.Set("interval", interval)
	q.Set("limit", strconv.FormatInt(limit, 10))
	u := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, &upstream.HTTPError{Source: source, Status: res.StatusCode, Message: errorMessage(body)}
	}

	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &upstream.SchemaError{Source: source, Reason: "response is not an array of klines"}
	}

	// 空配列は正常な「データなし」
	candles := make(entity.History, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, &upstream.SchemaError{Source: source, Reason: fmt.Sprintf("kline row has %d fields, want >= 6", len(row))}
		}
		ts, err := toFloat(row[0])
		if err != nil {
			return nil, &upstream.SchemaError{Source: source, Reason: "open time: " + err.Error()}
		}
		var c entity.Candle
		c.Time = int64(ts) / 1000 // ms -> s 切り捨て
		for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			v, err := toFloat(row[i+1])
			if err != nil {
				return nil, &upstream.SchemaError{Source: source, Reason: err.Error()}
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// toFloat はBinanceが数値・文字列のどちらで返してもfloat64へ変換します。
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", x, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected numeric type %T", v)
	}
}

// errorMessage はエラーボディからBinanceのmsgフィールドを取り出します。
func errorMessage(body []byte) string {
	var e struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Msg != "" {
		return e.Msg
	}
	return ""
}
