// Package coingecko はCoinGecko APIからローソク足を取得するアダプタです。
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/platform/upstream"
)

const source = "coingecko"

// ohlcDays は/coins/{id}/ohlcが受け付ける日数の選択肢です。
var ohlcDays = []int{1, 7, 14, 30, 90, 180, 365}

// knownIDs はよく使うティッカーのコインID対応表です。
// ここにないシンボルは/searchで解決し、結果をキャッシュします。
var knownIDs = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"usdt":  "tether",
	"usdc":  "usd-coin",
	"bnb":   "binancecoin",
	"xrp":   "ripple",
	"ada":   "cardano",
	"sol":   "solana",
	"doge":  "dogecoin",
	"dot":   "polkadot",
	"matic": "matic-network",
	"ltc":   "litecoin",
	"link":  "chainlink",
	"avax":  "avalanche-2",
	"uni":   "uniswap",
	"wbtc":  "wrapped-bitcoin",
	"dai":   "dai",
	"shib":  "shiba-inu",
}

// Client はCoinGecko APIのクライアントです。
// 公開APIのレートリミットが厳しいため、リミッターで呼び出し間隔を空け、
// 429は指数バックオフで再試行します（元実装と同じ振る舞い）。
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter

	mu      sync.RWMutex
	idCache map[string]string // ティッカー(小文字) → コインID
}

// NewClient は指定されたベースURLとHTTPクライアントでClientを生成します。
func NewClient(baseURL string, client *http.Client) *Client {
	idCache := make(map[string]string, len(knownIDs))
	for k, v := range knownIDs {
		idCache[k] = v
	}
	return &Client{
		baseURL: baseURL,
		client:  client,
		// 公開APIはおよそ30req/min。2秒に1回まで
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		idCache: idCache,
	}
}

// Name returns the provider identifier used in logs and error reports.
func (c *Client) Name() string { return source }

// FetchOHLC はシンボルをコインIDへ解決し、ローソク足系列を取得します。
//
// 日足は/coins/{id}/ohlcの真のOHLCを使います。それ以外の間隔では
// /coins/{id}/market_chartの価格系列しか得られないため、
// open=high=low=close=価格・volume=0の縮退ローソク足を合成します。
// これは既知の近似であり、欠陥ではありません。
func (c *Client) FetchOHLC(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
	id, err := c.resolveID(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if id == "" {
		// 検索で見つからないのは正常な「データなし」
		return entity.History{}, nil
	}

	if interval == "1d" {
		return c.fetchDailyOHLC(ctx, id, days)
	}
	return c.fetchMarketChart(ctx, id, days)
}

// fetchDailyOHLC は[ts_ms, open, high, low, close]行の配列を変換します。
func (c *Client) fetchDailyOHLC(ctx context.Context, id string, days int) (entity.History, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", fmt.Sprintf("%d", snapOHLCDays(days)))
	u := fmt.Sprintf("%s/coins/%s/ohlc?%s", c.baseURL, id, q.Encode())

	var rows [][]float64
	if err := c.getJSON(ctx, u, &rows); err != nil {
		return nil, err
	}

	candles := make(entity.History, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			return nil, &upstream.SchemaError{Source: source, Reason: fmt.Sprintf("ohlc row has %d fields, want 5", len(row))}
		}
		candles = append(candles, entity.Candle{
			Time:  int64(row[0]) / 1000, // ms -> s
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}
	return candles, nil
}

// fetchMarketChart は価格系列から縮退ローソク足を合成します。
func (c *Client) fetchMarketChart(ctx context.Context, id string, days int) (entity.History, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", fmt.Sprintf("%d", days))
	u := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, id, q.Encode())

	var body struct {
		Prices *[][]float64 `json:"prices"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if body.Prices == nil {
		return nil, &upstream.SchemaError{Source: source, Reason: "missing prices field"}
	}

	candles := make(entity.History, 0, len(*body.Prices))
	for _, row := range *body.Prices {
		if len(row) < 2 {
			return nil, &upstream.SchemaError{Source: source, Reason: "price point is not [ts, price]"}
		}
		p := row[1]
		candles = append(candles, entity.Candle{
			Time:  int64(row[0]) / 1000,
			Open:  p,
			High:  p,
			Low:   p,
			Close: p,
		})
	}
	return candles, nil
}

// resolveID はティッカーをCoinGeckoのコインIDへ解決します。
// 既知の対応表 → キャッシュ → /search の順で引き、結果を保持します。
func (c *Client) resolveID(ctx context.Context, symbol string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(symbol))
	if key == "" {
		return "", nil
	}

	c.mu.RLock()
	id, ok := c.idCache[key]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	q := url.Values{}
	q.Set("query", key)
	u := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())

	var body struct {
		Coins *[]struct {
			ID     string `json:"id"`
			Symbol string `json:"symbol"`
		} `json:"coins"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return "", err
	}
	if body.Coins == nil {
		return "", &upstream.SchemaError{Source: source, Reason: "missing coins field"}
	}

	// シンボル一致を優先し、なければ先頭候補を採用
	found := ""
	for _, coin := range *body.Coins {
		if strings.EqualFold(coin.Symbol, key) {
			found = coin.ID
			break
		}
	}
	if found == "" && len(*body.Coins) > 0 {
		found = (*body.Coins)[0].ID
	}
	if found != "" {
		c.mu.Lock()
		c.idCache[key] = found
		c.mu.Unlock()
	}
	return found, nil
}

// getJSON はレート制限と429再試行つきでGETし、JSONをデコードします。
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			if err := res.Body.Close(); err != nil {
				slog.Warn("failed to close response body", "error", err)
			}
		}()

		if res.StatusCode == http.StatusTooManyRequests {
			// 429のみ再試行対象
			_, _ = io.Copy(io.Discard, res.Body)
			return retry.RetryableError(&upstream.HTTPError{Source: source, Status: res.StatusCode})
		}
		if res.StatusCode >= 400 {
			msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
			return &upstream.HTTPError{Source: source, Status: res.StatusCode, Message: string(msg)}
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return &upstream.SchemaError{Source: source, Reason: err.Error()}
		}
		return nil
	})
}

// snapOHLCDays はdaysを/ohlcが受け付ける値のうち最小の十分な値へ丸めます。
func snapOHLCDays(days int) int {
	for _, d := range ohlcDays {
		if days <= d {
			return d
		}
	}
	return ohlcDays[len(ohlcDays)-1]
}
