package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sarahoor/Final-TraDex/internal/feature/market/domain/entity"
)

// SnapshotFetcher は1プロトコルのスナップショット取得を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SnapshotFetcher interface {
	// Protocol はプロトコル識別子を返します (例: "uniswap")。
	Protocol() string
	// FetchSnapshot は指定時点のトークン価格・プール一覧を取得します。
	FetchSnapshot(ctx context.Context, secondsAgo, first int) (*entity.Snapshot, error)
}

// MarketUsecase は複数DEXへのファンアウトと価格集約のユースケースです。
type MarketUsecase struct {
	fetchers []SnapshotFetcher // 有効化順
}

// NewMarketUsecase はMarketUsecaseの新しいインスタンスを生成します。
func NewMarketUsecase(fetchers []SnapshotFetcher) *MarketUsecase {
	return &MarketUsecase{fetchers: fetchers}
}

// Protocols は有効化順のプロトコル識別子を返します。
func (u *MarketUsecase) Protocols() []string {
	ids := make([]string, 0, len(u.fetchers))
	for _, f := range u.fetchers {
		ids = append(ids, f.Protocol())
	}
	return ids
}

// GetMarkets は要求されたプロトコルへ並行で問い合わせ、結果を集約します。
//
// 各リクエストは独立に失敗できます（allSettled方式）。失敗したプロトコルの
// 寄与は空になり、エラーは結果のErrorsに記録されます。要求された全
// プロトコルが失敗した場合のみエラーを返します。
// protocolsが空の場合は有効な全プロトコルが対象です。
func (u *MarketUsecase) GetMarkets(ctx context.Context, protocols []string, secondsAgo, first int) (*entity.MarketTable, error) {
	targets := u.selectFetchers(protocols)
	if len(targets) == 0 {
		return nil, fmt.Errorf("no protocols configured")
	}

	type result struct {
		protocol string
		snap     *entity.Snapshot
		err      error
	}
	results := make([]result, len(targets))

	var wg sync.WaitGroup
	wg.Add(len(targets))
	for i, f := range targets {
		go func(i int, f SnapshotFetcher) {
			defer wg.Done()
			snap, err := f.FetchSnapshot(ctx, secondsAgo, first)
			results[i] = result{protocol: f.Protocol(), snap: snap, err: err}
		}(i, f)
	}
	wg.Wait()

	snapshots := make(map[string]*entity.Snapshot, len(targets))
	order := make([]string, 0, len(targets))
	failures := make(map[string]string)
	for _, r := range results {
		order = append(order, r.protocol)
		if r.err != nil {
			// 1プロトコルの失敗は空の寄与に降格する
			slog.Warn("protocol snapshot failed, contributing nothing", "protocol", r.protocol, "error", r.err)
			failures[r.protocol] = r.err.Error()
			continue
		}
		snapshots[r.protocol] = r.snap
	}

	if len(failures) == len(targets) {
		return nil, fmt.Errorf("all protocols failed: %v", failures)
	}

	table := Aggregate(snapshots, order)
	if len(failures) > 0 {
		table.Errors = failures
	}
	return table, nil
}

// selectFetchers は要求されたプロトコルのフェッチャーを有効化順で返します。
// 未知のプロトコル名は無視します。
func (u *MarketUsecase) selectFetchers(protocols []string) []SnapshotFetcher {
	if len(protocols) == 0 {
		return u.fetchers
	}
	requested := make(map[string]struct{}, len(protocols))
	for _, p := range protocols {
		requested[p] = struct{}{}
	}
	var out []SnapshotFetcher
	for _, f := range u.fetchers {
		if _, ok := requested[f.Protocol()]; ok {
			out = append(out, f)
		}
	}
	return out
}
