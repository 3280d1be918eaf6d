package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/sarahoor/Final-TraDex/internal/feature/candles/domain/entity"
	"github.com/sarahoor/Final-TraDex/internal/platform/upstream"
)

// mockProvider はHistoryProviderインターフェースのモック実装です。
type mockProvider struct {
	name      string
	FetchFunc func(ctx context.Context, symbol, interval string, days int) (entity.History, error)
	Calls     int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) FetchOHLC(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
	m.Calls++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, symbol, interval, days)
	}
	return nil, errors.New("FetchFunc is not implemented")
}

var threeCandles = entity.History{
	{Time: 100, Open: 1, High: 2, Low: 0.5, Close: 1.5},
	{Time: 200, Open: 1.5, High: 2.5, Low: 1, Close: 2},
	{Time: 300, Open: 2, High: 3, Low: 1.5, Close: 2.5},
}

// TestHistoryUsecase_GetCandles_Fallback は一次プロバイダ失敗時の
// フォールバックを検証します。
func TestHistoryUsecase_GetCandles_Fallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	testCases := []struct {
		name          string
		primary       func(ctx context.Context, symbol, interval string, days int) (entity.History, error)
		secondary     func(ctx context.Context, symbol, interval string, days int) (entity.History, error)
		expectedLen   int
		expectedCalls [2]int
	}{
		{
			name: "primary succeeds, secondary untouched",
			primary: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
				return threeCandles, nil
			},
			secondary:     nil,
			expectedLen:   3,
			expectedCalls: [2]int{1, 0},
		},
		{
			name: "primary throws, secondary serves",
			primary: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
				return nil, errors.New("binance down")
			},
			secondary: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
				return threeCandles, nil
			},
			expectedLen:   3,
			expectedCalls: [2]int{1, 1},
		},
		{
			name: "primary empty, secondary serves",
			primary: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
				return entity.History{}, nil
			},
			secondary: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
				return threeCandles, nil
			},
			expectedLen:   3,
			expectedCalls: [2]int{1, 1},
		},
		{
			name: "both fail yields empty, not error",
			primary: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
				return nil, errors.New("binance down")
			},
			secondary: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
				return nil, errors.New("coingecko down")
			},
			expectedLen:   0,
			expectedCalls: [2]int{1, 1},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			primary := &mockProvider{name: "binance", FetchFunc: tc.primary}
			secondary := &mockProvider{name: "coingecko", FetchFunc: tc.secondary}
			uc := NewHistoryUsecase([]HistoryProvider{primary, secondary}, nil)

			h, err := uc.GetCandles(ctx, "BTC", "1h", 7)
			if err != nil {
				t.Fatalf("fallback chain must not surface errors, got %v", err)
			}
			if len(h) != tc.expectedLen {
				t.Errorf("expected %d candles, got %d", tc.expectedLen, len(h))
			}
			if primary.Calls != tc.expectedCalls[0] || secondary.Calls != tc.expectedCalls[1] {
				t.Errorf("expected calls %v, got [%d %d]", tc.expectedCalls, primary.Calls, secondary.Calls)
			}
		})
	}
}

// アドレス形式のシンボルはチェーンではなくToken APIプロバイダへ回ります。
func TestHistoryUsecase_GetCandles_AddressRouting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	addr := "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"

	chain := &mockProvider{name: "binance"}
	address := &mockProvider{
		name: "tokenapi",
		FetchFunc: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
			if symbol != addr {
				t.Errorf("expected contract address passthrough, got %s", symbol)
			}
			return threeCandles, nil
		},
	}
	uc := NewHistoryUsecase([]HistoryProvider{chain}, address)

	h, err := uc.GetCandles(ctx, addr, "1h", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h) != 3 {
		t.Errorf("expected 3 candles, got %d", len(h))
	}
	if chain.Calls != 0 {
		t.Error("ticker chain must not be called for address symbols")
	}
}

// Token API未設定でアドレスを引くとConfigErrorになります。
func TestHistoryUsecase_GetCandles_AddressWithoutToken(t *testing.T) {
	t.Parallel()

	uc := NewHistoryUsecase([]HistoryProvider{&mockProvider{name: "binance"}}, nil)

	_, err := uc.GetCandles(context.Background(), "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", "1h", 7)
	var cfgErr *upstream.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

// 統合取得は全プロバイダへ並行で問い合わせ、失敗ソースは空として扱います。
func TestHistoryUsecase_GetMergedCandles_PartialFailure(t *testing.T) {
	t.Parallel()

	primary := &mockProvider{
		name: "binance",
		FetchFunc: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
			return entity.History{{Time: 100, Open: 10, High: 12, Low: 9, Close: 11}}, nil
		},
	}
	secondary := &mockProvider{
		name: "coingecko",
		FetchFunc: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
			return nil, errors.New("coingecko down")
		},
	}
	uc := NewHistoryUsecase([]HistoryProvider{primary, secondary}, nil)

	h, err := uc.GetMergedCandles(context.Background(), "BTC", "1h", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h) != 1 {
		t.Fatalf("expected 1 candle from surviving source, got %d", len(h))
	}
	if h[0].Close != 11 {
		t.Errorf("expected close 11, got %f", h[0].Close)
	}
}

// 統合取得で同一バケットが正しく統合されることを検証します。
func TestHistoryUsecase_GetMergedCandles_Merges(t *testing.T) {
	t.Parallel()

	primary := &mockProvider{
		name: "binance",
		FetchFunc: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
			return entity.History{{Time: 100, Open: 10, High: 12, Low: 9, Close: 11}}, nil
		},
	}
	secondary := &mockProvider{
		name: "coingecko",
		FetchFunc: func(ctx context.Context, symbol, interval string, days int) (entity.History, error) {
			return entity.History{{Time: 100, Open: 10.5, High: 11.5, Low: 9.5, Close: 10.5}}, nil
		},
	}
	uc := NewHistoryUsecase([]HistoryProvider{primary, secondary}, nil)

	h, err := uc.GetMergedCandles(context.Background(), "BTC", "1h", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h) != 1 {
		t.Fatalf("expected 1 merged candle, got %d", len(h))
	}
	if h[0].High != 12 || h[0].Low != 9.5 || h[0].Close != 10.5 {
		t.Errorf("unexpected merged candle: %+v", h[0])
	}
}
