// Package usecase はローソク足履歴の取得・統合のビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/platform/upstream"
	"github.com/sarahoor/Final-TraDex/internal/shared/symbols"
)

const (
	// DefaultInterval はローソク足クエリのデフォルト時間間隔です。
	DefaultInterval = "1h"
	// DefaultDays はデフォルトの取得日数です。
	DefaultDays = 30
	// MaxDays は取得日数の上限です。
	MaxDays = 365
)

// HistoryProvider はローソク足履歴の取得元を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type HistoryProvider interface {
	// Name はログ・エラー集計に使う取得元の識別子を返します。
	Name() string
	// FetchOHLC は指定シンボルのローソク足系列を取得します。
	// 上流が正常かつデータなしの場合は空の系列を返します（エラーではない）。
	FetchOHLC(ctx context.Context, symbol, interval string, days int) (entity.History, error)
}

// HistoryUsecase はフォールバックチェーンと統合取得のユースケースです。
type HistoryUsecase struct {
	// chain は能力的に等価なプロバイダの優先順リストです（Binance → CoinGecko）。
	chain []HistoryProvider
	// address はコントラクトアドレス指定時に使うToken APIプロバイダです。
	// トークン未設定の場合はnilになります。
	address HistoryProvider
}

// NewHistoryUsecase はHistoryUsecaseの新しいインスタンスを生成します。
func NewHistoryUsecase(chain []HistoryProvider, address HistoryProvider) *HistoryUsecase {
	return &HistoryUsecase{chain: chain, address: address}
}

// normalizeParams は未指定・範囲外のパラメータをデフォルト値に丸めます。
func normalizeParams(interval string, days int) (string, int) {
	if interval == "" {
		interval = DefaultInterval
	}
	if days <= 0 || days > MaxDays {
		days = DefaultDays
	}
	return interval, days
}

// GetCandles は優先順のプロバイダを順に試し、最初に得られた空でない系列を返します。
//
// プロバイダの失敗と「正常だがデータなし」はどちらも次のプロバイダへの
// フォールバック条件です。全プロバイダが失敗・空の場合は空の系列を返し、
// エラーにはしません（呼び出し元を巻き込んで失敗させない）。
// コントラクトアドレス形式のシンボルはチェーンではなくToken APIへ回します。
func (u *HistoryUsecase) GetCandles(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
	interval, days = normalizeParams(interval, days)

	if symbols.IsAddress(symbol) {
		if u.address == nil {
			return nil, &upstream.ConfigError{Name: "TOKEN_API_TOKEN"}
		}
		return u.address.FetchOHLC(ctx, symbol, interval, days)
	}

	for _, p := range u.chain {
		h, err := p.FetchOHLC(ctx, symbol, interval, days)
		if err != nil {
			// 失敗は飲み込まずログへ。次のプロバイダで継続
			slog.Warn("history provider failed, trying next", "provider", p.Name(), "symbol", symbol, "error", err)
			continue
		}
		if len(h) == 0 {
			slog.Debug("history provider returned no data", "provider", p.Name(), "symbol", symbol)
			continue
		}
		return h, nil
	}
	return entity.History{}, nil
}

// GetMergedCandles は全プロバイダへ並行で問い合わせ、得られた系列を
// タイムスタンプ単位で統合して返します。
//
// 各リクエストは独立に失敗できます（allSettled方式）。失敗したソースの
// 寄与は空として扱い、1ソースの障害が全体を沈めることはありません。
func (u *HistoryUsecase) GetMergedCandles(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
	interval, days = normalizeParams(interval, days)

	if symbols.IsAddress(symbol) {
		// アドレスはToken APIの単一ソースのため統合対象なし
		return u.GetCandles(ctx, symbol, interval, days)
	}

	results := make([]entity.History, len(u.chain))
	var wg sync.WaitGroup
	wg.Add(len(u.chain))
	for i, p := range u.chain {
		go func(i int, p HistoryProvider) {
			defer wg.Done()
			h, err := p.FetchOHLC(ctx, symbol, interval, days)
			if err != nil {
				slog.Warn("history provider failed, contributing nothing", "provider", p.Name(), "symbol", symbol, "error", err)
				return
			}
			results[i] = h
		}(i, p)
	}
	wg.Wait()

	return MergeHistories(results), nil
}
