// Package usecase はクロスプロトコルの価格集約のビジネスロジックを実装します。
package usecase

import (
	"sort"
	"strings"

	"github.com/sarahoor/Final-TraDex/internal/feature/market/domain/entity"
)

// priceSuppressionThreshold を超える中央値は不正データ（decimal桁違い・
// 誤プール）とみなして抑制します。ただし正当な高額資産は除外します。
const priceSuppressionThreshold = 1_000_000

// highValueAllowList は100万USDを超えても正当な資産のティッカーです。
var highValueAllowList = map[string]struct{}{
	"BTC":    {},
	"WBTC":   {},
	"TBTC":   {},
	"ETH":    {},
	"WETH":   {},
	"PAXG":   {},
	"RETH":   {},
	"STETH":  {},
	"WSTETH": {},
}

// Aggregate は複数プロトコルのスナップショットを1シンボル1行の表へ集約します。
//
// シンボルは大文字化・トリムして突き合わせ、空シンボルは捨てます。
// 行の価格は全プロトコルの観測値の中央値（偶数個は下側中央値）で、
// 中央値が100万USDを超え、かつ許可リスト外のシンボルはnilに抑制します。
// プールは重複排除せず、orderの有効化順にそのまま連結します。
// スナップショットが欠けたプロトコルは単に寄与しません（全体は失敗しない）。
func Aggregate(snapshots map[string]*entity.Snapshot, order []string) *entity.MarketTable {
	table := &entity.MarketTable{}

	type acc struct {
		prices     []float64
		byProtocol map[string]float64
	}
	accs := make(map[string]*acc)
	var discovery []string // 行の出現順を保つ

	for _, protocol := range order {
		snap := snapshots[protocol]
		if snap == nil {
			continue
		}
		for _, tp := range snap.Tokens {
			symbol := strings.ToUpper(strings.TrimSpace(tp.Symbol))
			if symbol == "" {
				continue
			}
			a, ok := accs[symbol]
			if !ok {
				a = &acc{byProtocol: make(map[string]float64)}
				accs[symbol] = a
				discovery = append(discovery, symbol)
			}
			a.prices = append(a.prices, tp.PriceUSD)
			a.byProtocol[protocol] = tp.PriceUSD
		}
		table.Pairs = append(table.Pairs, snap.Pools...)
	}

	for _, symbol := range discovery {
		a := accs[symbol]
		row := entity.MarketRow{Symbol: symbol, ByProtocol: a.byProtocol}

		median := lowerMedian(a.prices)
		if median <= priceSuppressionThreshold || isAllowListed(symbol) {
			row.Price = &median
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func isAllowListed(symbol string) bool {
	_, ok := highValueAllowList[symbol]
	return ok
}

// lowerMedian は数値ソート後の下側中央値を返します（候補収集順に依存しない）。
func lowerMedian(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}
