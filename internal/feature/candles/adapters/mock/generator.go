// Package mock は決定的な合成ローソク足を生成するアダプタです。
// ライブデータを要求されないときの代替で、下流の契約は実アダプタと同一です。
package mock

import (
	"context"
	"math"
	"time"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
)

// maxCandles は1系列あたりの生成上限です。
const maxCandles = 1000

// intervalSteps は対応する時間間隔と秒数の対応です。未知は1時間足です。
var intervalSteps = map[string]int64{
	"1m":  60,
	"5m":  300,
	"15m": 900,
	"1h":  3600,
	"4h":  14400,
	"1d":  86400,
}

// Generator はシンボルから決定的に導かれる疑似ランダムウォークを生成します。
// 同じシンボル・引数・基準時刻に対して常に同じ系列を返します。
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a mock history generator.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Name returns the provider identifier.
func (g *Generator) Name() string { return "mock" }

// FetchOHLC はHistoryProviderとしての入口です。実アダプタと同じ契約で、
// エラーは返しません。
func (g *Generator) FetchOHLC(_ context.Context, symbol, interval string, days int) (entity.History, error) {
	return g.GenerateAt(symbol, days, interval, g.now()), nil
}

// GenerateAt は基準時刻nowで終わる合成系列を生成します。
//
// シードはシンボルの文字コード和で、32bitの線形合同法で進めます。
// 各ステップで価格を小さな符号付きドリフトで動かし、
// high/low = open ± |drift|×ボラティリティ係数として導出します。
// 価格は0.0001を下限とし、全フィールドを小数4桁へ丸めます。
// 系列長は min(1000, days×86400/step) で、古い順・間隔はちょうどstep秒です。
func (g *Generator) GenerateAt(symbol string, days int, interval string, now time.Time) entity.History {
	step, ok := intervalSteps[interval]
	if !ok {
		step = 3600
	}

	n := int64(days) * 86400 / step
	if n > maxCandles {
		n = maxCandles
	}
	if n <= 0 {
		return entity.History{}
	}

	var seed uint32
	for _, r := range symbol {
		seed += uint32(r)
	}
	// 線形合同法。uint32の自然なラップアラウンドで32bitに収まる
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed) / float64(math.MaxUint32)
	}

	// 初期価格もシンボル依存で決定的
	price := 10 + 990*next()
	end := now.Unix()

	candles := make(entity.History, 0, n)
	for i := int64(0); i < n; i++ {
		drift := (next() - 0.5) * 0.02 * price
		// ボラティリティ係数は[1,2)。highとlowがopen/closeの両方を挟むことを保証する
		vol := 1 + next()

		open := price
		close := clampPrice(open + drift)
		high := open + math.Abs(drift)*vol
		low := clampPrice(open - math.Abs(drift)*vol)

		candles = append(candles, entity.Candle{
			Time:   end - (n-1-i)*step,
			Open:   round4(open),
			High:   round4(high),
			Low:    round4(low),
			Close:  round4(close),
			Volume: round4(100 + 900*next()),
		})
		price = close
	}
	return candles
}

func clampPrice(p float64) float64 {
	if p < 0.0001 {
		return 0.0001
	}
	return p
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
