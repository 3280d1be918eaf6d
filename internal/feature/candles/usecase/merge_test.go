package usecase

import (
	"reflect"
	"testing"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
)

// タイムスタンプが互いに素な2系列の統合は、時刻順の連結と一致します
// （各closeは単独バケットの中央値、すなわち自分自身のまま）。
func TestMergeHistories_DisjointTimestamps(t *testing.T) {
	t.Parallel()

	h1 := entity.History{
		{Time: 100, Open: 10, High: 12, Low: 9, Close: 11, Volume: 5},
		{Time: 300, Open: 11, High: 13, Low: 10, Close: 12, Volume: 3},
	}
	h2 := entity.History{
		{Time: 200, Open: 10.5, High: 11.5, Low: 9.5, Close: 10.5, Volume: 2},
	}

	got := MergeHistories([]entity.History{h1, h2})

	expected := entity.History{
		{Time: 100, Open: 10, High: 12, Low: 9, Close: 11, Volume: 5},
		{Time: 200, Open: 10.5, High: 11.5, Low: 9.5, Close: 10.5, Volume: 2},
		{Time: 300, Open: 11, High: 13, Low: 10, Close: 12, Volume: 3},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("merge mismatch:\n got  %+v\n want %+v", got, expected)
	}
}

// 同一タイムスタンプのバケットは high=max, low=min,
// close=全closeの下側中央値 に統合されます。
func TestMergeHistories_SharedBucket(t *testing.T) {
	t.Parallel()

	h1 := entity.History{{Time: 100, Open: 10, High: 12, Low: 9, Close: 11}}
	h2 := entity.History{{Time: 100, Open: 10.5, High: 11.5, Low: 9.5, Close: 10.5}}

	got := MergeHistories([]entity.History{h1, h2})

	if len(got) != 1 {
		t.Fatalf("expected 1 merged candle, got %d", len(got))
	}
	c := got[0]
	if c.Open != 10 {
		t.Errorf("expected open from first inserted candle (10), got %f", c.Open)
	}
	if c.High != 12 {
		t.Errorf("expected high 12, got %f", c.High)
	}
	if c.Low != 9.5 {
		t.Errorf("expected low 9.5, got %f", c.Low)
	}
	// median(11, 10.5) = 昇順[10.5, 11]の下側中央値 = 10.5
	if c.Close != 10.5 {
		t.Errorf("expected close 10.5 (lower median), got %f", c.Close)
	}
}

func TestMergeHistories_EmptyAndSingle(t *testing.T) {
	t.Parallel()

	if got := MergeHistories(nil); len(got) != 0 {
		t.Errorf("expected empty output for nil input, got %d", len(got))
	}
	if got := MergeHistories([]entity.History{{}, {}}); len(got) != 0 {
		t.Errorf("expected empty output for empty inputs, got %d", len(got))
	}

	// 単一系列はそのまま往復する（1要素の中央値は自分自身）
	h := entity.History{
		{Time: 100, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 7},
		{Time: 200, Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 8},
	}
	got := MergeHistories([]entity.History{h})
	if !reflect.DeepEqual(got, h) {
		t.Errorf("single input must round-trip:\n got  %+v\n want %+v", got, h)
	}
}

// closeの中央値は挿入順ではなく数値ソートで決まります（再現性のため）。
func TestMergeHistories_MedianUsesNumericSort(t *testing.T) {
	t.Parallel()

	histories := []entity.History{
		{{Time: 100, Open: 1, High: 5, Low: 1, Close: 4}},
		{{Time: 100, Open: 1, High: 5, Low: 1, Close: 2}},
		{{Time: 100, Open: 1, High: 5, Low: 1, Close: 3}},
	}

	got := MergeHistories(histories)
	// 昇順[2,3,4]の中央値
	if got[0].Close != 3 {
		t.Errorf("expected close 3, got %f", got[0].Close)
	}
}
