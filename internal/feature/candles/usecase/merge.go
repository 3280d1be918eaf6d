package usecase

import (
	"sort"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
)

// MergeHistories は複数のローソク足系列をタイムスタンプ単位で統合します。
//
// 同一timeのローソク足は1つのバケットにまとめ、
//   - open  = バケットに最初に入ったローソク足のopen（ソース間の優先順位
//     ではなく挿入順のタイブレーク）
//   - high  = バケット内の最大high
//   - low   = バケット内の最小low
//   - close = バケット内の全closeの中央値（偶数個の場合は下側中央値）。
//     1ソースの異常なプリントに引きずられないようにするための措置
//   - volume = バケット内volumeの合計
//
// 出力はtime昇順です。空入力は空の系列を返します。
func MergeHistories(histories []entity.History) entity.History {
	buckets := make(map[int64][]entity.Candle)
	for _, h := range histories {
		for _, c := range h {
			buckets[c.Time] = append(buckets[c.Time], c)
		}
	}
	if len(buckets) == 0 {
		return entity.History{}
	}

	times := make([]int64, 0, len(buckets))
	for t := range buckets {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	merged := make(entity.History, 0, len(times))
	for _, t := range times {
		cs := buckets[t]

		out := entity.Candle{
			Time: t,
			Open: cs[0].Open,
			High: cs[0].High,
			Low:  cs[0].Low,
		}
		closes := make([]float64, 0, len(cs))
		for _, c := range cs {
			if c.High > out.High {
				out.High = c.High
			}
			if c.Low < out.Low {
				out.Low = c.Low
			}
			out.Volume += c.Volume
			closes = append(closes, c.Close)
		}
		out.Close = lowerMedian(closes)
		merged = append(merged, out)
	}
	return merged
}

// lowerMedian は数値ソート後の下側中央値を返します。
// 反復順ではなく数値ソートを使うことで結果が再現可能になります。
func lowerMedian(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}
