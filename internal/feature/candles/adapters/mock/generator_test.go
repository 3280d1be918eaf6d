package mock

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestGenerator_GenerateAt_LengthAndSpacing(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	h := g.GenerateAt("BTC", 1, "1h", now)

	// min(1000, 1*86400/3600) = 24
	if len(h) != 24 {
		t.Fatalf("expected 24 candles, got %d", len(h))
	}
	if h[len(h)-1].Time != now.Unix() {
		t.Errorf("expected last candle at now, got %d", h[len(h)-1].Time)
	}
	for i := 1; i < len(h); i++ {
		if h[i].Time-h[i-1].Time != 3600 {
			t.Fatalf("expected 3600s spacing at index %d, got %d", i, h[i].Time-h[i-1].Time)
		}
	}
}

func TestGenerator_GenerateAt_Deterministic(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := g.GenerateAt("ETH", 3, "4h", now)
	b := g.GenerateAt("ETH", 3, "4h", now)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical series for identical arguments")
	}

	c := g.GenerateAt("BTC", 3, "4h", now)
	if reflect.DeepEqual(a, c) {
		t.Error("expected different symbols to produce different series")
	}
}

func TestGenerator_GenerateAt_Invariants(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, symbol := range []string{"BTC", "ETH", "DOGE", "X"} {
		h := g.GenerateAt(symbol, 2, "15m", now)
		for i, c := range h {
			if c.Low > c.Open || c.Low > c.Close || c.High < c.Open || c.High < c.Close {
				t.Errorf("%s[%d]: OHLC invariant violated: %+v", symbol, i, c)
			}
			if c.Low < 0.0001 {
				t.Errorf("%s[%d]: price below floor: %+v", symbol, i, c)
			}
		}
	}
}

func TestGenerator_GenerateAt_CapAndDefaults(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 60日×1時間足 = 1440本だが1000本で打ち切られる
	if got := len(g.GenerateAt("BTC", 60, "1h", now)); got != 1000 {
		t.Errorf("expected cap at 1000 candles, got %d", got)
	}

	// 未知のインターバルは1時間足
	if got := len(g.GenerateAt("BTC", 1, "2h", now)); got != 24 {
		t.Errorf("expected unknown interval to default to 1h (24 candles), got %d", got)
	}
}

func TestGenerator_FetchOHLC(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	h, err := g.FetchOHLC(context.Background(), "BTC", "1d", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h) != 7 {
		t.Errorf("expected 7 candles, got %d", len(h))
	}
}
