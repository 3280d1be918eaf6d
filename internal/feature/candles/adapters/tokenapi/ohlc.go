// Package tokenapi はToken APIからコントラクトアドレス指定でOHLCを取得する
// アダプタです。Bearerトークン認証が必須です。
package tokenapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/platform/upstream"
)

const source = "tokenapi"

// intervalMap はこのアダプタが受け付ける時間間隔の対応です。
// 未知の間隔は1時間足にフォールバックします。
var intervalMap = map[string]string{
	"1h": "1h",
	"4h": "4h",
	"1d": "1d",
	"1w": "1w",
}

// Client はToken APIのクライアントです。
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient は構築時にBearerトークンを検証します（初回利用時ではなく）。
func NewClient(baseURL, token string, client *http.Client) (*Client, error) {
	if token == "" {
		return nil, &upstream.ConfigError{Name: "TOKEN_API_TOKEN"}
	}
	return &Client{baseURL: baseURL, token: token, client: client}, nil
}

// Name returns the provider identifier used in logs and error reports.
func (c *Client) Name() string { return source }

// ohlcResponse はToken APIのOHLCレスポンスです。
type ohlcResponse struct {
	Data *[]struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open"`
		High     float64 `json:"high"`
		Low      float64 `json:"low"`
		Close    float64 `json:"close"`
		Volume   float64 `json:"volume"`
	} `json:"data"`
}

// FetchOHLC はEVMコントラクトアドレスのOHLC履歴を取得します。
// symbolには0xプレフィクス付きのコントラクトアドレスを渡します。
func (c *Client) FetchOHLC(ctx context.Context, contract, interval string, days int) (entity.History, error) {
	mapped, ok := intervalMap[interval]
	if !ok {
		mapped = "1h"
	}

	limit := days * 24
	if mapped == "1d" || mapped == "1w" {
		limit = days
	}
	if limit > 1000 {
		limit = 1000
	}
	if limit < 1 {
		limit = 1
	}

	q := url.Values{}
	q.Set("network_id", "mainnet")
	q.Set("interval", mapped)
	q.Set("limit", fmt.Sprintf("%d", limit))
	u := fmt.Sprintf("%s/ohlc/prices/evm/%s?%s", c.baseURL, contract, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &upstream.HTTPError{Source: source, Status: res.StatusCode, Message: string(msg)}
	}

	var body ohlcResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, &upstream.SchemaError{Source: source, Reason: err.Error()}
	}
	if body.Data == nil {
		return nil, &upstream.SchemaError{Source: source, Reason: "missing data field"}
	}

	candles := make(entity.History, 0, len(*body.Data))
	for _, v := range *body.Data {
		// タイムスタンプをパース（秒つき・RFC3339の両形式を受け付ける）
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse(time.RFC3339, v.Datetime)
			if err != nil {
				return nil, &upstream.SchemaError{Source: source, Reason: fmt.Sprintf("parse datetime %q", v.Datetime)}
			}
		}
		candles = append(candles, entity.Candle{
			Time:   tm.Unix(),
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: v.Volume,
		})
	}
	return candles, nil
}
