package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/sarahoor/Final-TraDex/internal/feature/market/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/platform/thegraph"
	"github.com/sarahoor/Final-TraDex/internal/platform/upstream"
)

// avgBlockTime は秒→ブロック数換算に使う平均ブロック時間（秒）です。
// 実際のブロック時間は揺れるため、secondsAgoが大きいほど誤差が育ちます。
// 元実装もドリフト補正はしていない、受容済みの近似です。
const avgBlockTime = 12

// DefaultFirst はtokens/poolsページの既定取得件数です。
const DefaultFirst = 300

// Fetcher は1プロトコルのスナップショット取得を担います。
type Fetcher struct {
	proto Protocol
	gql   *thegraph.Client
}

// NewFetcher creates a snapshot fetcher for one protocol descriptor.
func NewFetcher(proto Protocol, gql *thegraph.Client) *Fetcher {
	return &Fetcher{proto: proto, gql: gql}
}

// Protocol returns the protocol identifier (e.g. "uniswap").
func (f *Fetcher) Protocol() string { return f.proto.ID }

// FetchSnapshot は指定時点のトークン価格とプールの一覧を取得します。
//
// アンカーブロックは現在ブロック高から floor(secondsAgo / 12) を引いて
// 近似します。バリアントは順に試し、GraphQLエラー（スキーマ不一致）の
// 場合のみ次のバリアントへ進みます。最後のバリアントの失敗は
// そのまま呼び出し全体の失敗です（部分結果は返しません）。
func (f *Fetcher) FetchSnapshot(ctx context.Context, secondsAgo, first int) (*entity.Snapshot, error) {
	if secondsAgo < 0 {
		secondsAgo = 0
	}
	if first <= 0 {
		first = DefaultFirst
	}

	block, err := f.resolveBlock(ctx, secondsAgo)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i, variant := range f.proto.Variants {
		snap, err := f.fetchAtBlock(ctx, variant, block, first)
		if err == nil {
			snap.SecondsAgo = secondsAgo
			return snap, nil
		}
		lastErr = err

		var gqlErr *upstream.GraphQLError
		if errors.As(err, &gqlErr) && i < len(f.proto.Variants)-1 {
			slog.Warn("query variant rejected, trying next", "protocol", f.proto.ID, "variant", i, "error", err)
			continue
		}
		break
	}
	return nil, lastErr
}

// resolveBlock は現在ブロック高を取得し、secondsAgo分だけ過去へ戻します。
func (f *Fetcher) resolveBlock(ctx context.Context, secondsAgo int) (int64, error) {
	var out struct {
		Meta struct {
			Block struct {
				Number int64 `json:"number"`
			} `json:"block"`
		} `json:"_meta"`
	}
	if err := f.gql.Query(ctx, f.proto.SubgraphID, f.proto.ID, `{_meta{block{number}}}`, nil, &out); err != nil {
		return 0, err
	}
	if out.Meta.Block.Number == 0 {
		return 0, &upstream.SchemaError{Source: f.proto.ID, Reason: "missing _meta block number"}
	}
	block := out.Meta.Block.Number
	if secondsAgo > 0 {
		block -= int64(secondsAgo / avgBlockTime)
	}
	return block, nil
}

// fetchAtBlock はbundle・tokens・poolsを並行で取得して1つのSnapshotに
// まとめます。いずれかの失敗は全体の失敗です。
func (f *Fetcher) fetchAtBlock(ctx context.Context, variant QueryVariant, block int64, first int) (*entity.Snapshot, error) {
	var (
		wg        sync.WaitGroup
		baseUSD   = 1.0 // multiplyしないバリアントでは1のまま
		tokens    []tokenRow
		pools     []poolRow
		bundleErr error
		tokensErr error
		poolsErr  error
	)

	if variant.Multiply {
		wg.Add(1)
		go func() {
			defer wg.Done()
			baseUSD, bundleErr = f.fetchBundlePrice(ctx, variant, block)
		}()
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		tokens, tokensErr = f.fetchTokens(ctx, variant, block, first)
	}()
	go func() {
		defer wg.Done()
		pools, poolsErr = f.fetchPools(ctx, block, first)
	}()
	wg.Wait()

	for _, err := range []error{bundleErr, tokensErr, poolsErr} {
		if err != nil {
			return nil, err
		}
	}

	snap := &entity.Snapshot{BlockNumber: block}
	for _, t := range tokens {
		if t.Symbol == "" {
			continue
		}
		derived, err := strconv.ParseFloat(t.Derived, 64)
		if err != nil {
			continue // 数値として読めない価格は黙って捨てる
		}
		price := derived
		if variant.Multiply {
			price = derived * baseUSD
		}
		if price <= 0 {
			continue
		}
		snap.Tokens = append(snap.Tokens, entity.TokenPrice{Symbol: t.Symbol, PriceUSD: price})
	}
	for _, p := range pools {
		if p.Token0.Symbol == "" || p.Token1.Symbol == "" {
			continue
		}
		tick, _ := p.Tick.Int64()
		snap.Pools = append(snap.Pools, entity.PoolInfo{
			Pair: p.Token0.Symbol + "/" + p.Token1.Symbol,
			Tick: tick,
		})
	}
	return snap, nil
}

// tokenRow は汎用のtokens行です。価格フィールドはバリアントにより
// 異なるため、デコード前にクエリ側でエイリアスを貼って吸収します。
type tokenRow struct {
	Symbol  string `json:"symbol"`
	Derived string `json:"derived"`
}

type poolRow struct {
	Token0 struct {
		Symbol string `json:"symbol"`
	} `json:"token0"`
	Token1 struct {
		Symbol string `json:"symbol"`
	} `json:"token1"`
	Tick json.Number `json:"tick"`
}

func (f *Fetcher) fetchBundlePrice(ctx context.Context, variant QueryVariant, block int64) (float64, error) {
	query := fmt.Sprintf(`query($block: Int!){bundles(first: 1, block: {number: $block}){price: %s}}`, variant.BundleField)

	var out struct {
		Bundles []struct {
			Price string `json:"price"`
		} `json:"bundles"`
	}
	if err := f.gql.Query(ctx, f.proto.SubgraphID, f.proto.ID, query, map[string]any{"block": block}, &out); err != nil {
		return 0, err
	}
	if len(out.Bundles) == 0 {
		return 0, &upstream.SchemaError{Source: f.proto.ID, Reason: "empty bundles"}
	}
	price, err := strconv.ParseFloat(out.Bundles[0].Price, 64)
	if err != nil {
		return 0, &upstream.SchemaError{Source: f.proto.ID, Reason: "bundle price is not numeric"}
	}
	return price, nil
}

func (f *Fetcher) fetchTokens(ctx context.Context, variant QueryVariant, block int64, first int) ([]tokenRow, error) {
	query := fmt.Sprintf(
		`query($block: Int!, $first: Int!){tokens(first: $first%s, block: {number: $block}){symbol derived: %s}}`,
		f.orderClause(), variant.DerivedField,
	)

	var out struct {
		Tokens []tokenRow `json:"tokens"`
	}
	vars := map[string]any{"block": block, "first": first}
	if err := f.gql.Query(ctx, f.proto.SubgraphID, f.proto.ID, query, vars, &out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

func (f *Fetcher) fetchPools(ctx context.Context, block int64, first int) ([]poolRow, error) {
	query := fmt.Sprintf(
		`query($block: Int!, $first: Int!){pools(first: $first%s, block: {number: $block}){token0{symbol} token1{symbol} tick}}`,
		f.orderClause(),
	)

	var out struct {
		Pools []poolRow `json:"pools"`
	}
	vars := map[string]any{"block": block, "first": first}
	if err := f.gql.Query(ctx, f.proto.SubgraphID, f.proto.ID, query, vars, &out); err != nil {
		return nil, err
	}
	return out.Pools, nil
}

// orderClause は流動性指標が定義されていればorderBy句を返します。
func (f *Fetcher) orderClause() string {
	if f.proto.OrderBy == "" {
		return ""
	}
	return fmt.Sprintf(", orderBy: %s, orderDirection: desc", strings.TrimSpace(f.proto.OrderBy))
}
