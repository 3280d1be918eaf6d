package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/sarahoor/Final-TraDex/internal/feature/market/domain/entity"
)

func okFetcher(protocol, symbol string, price float64) *mockFetcher {
	return &mockFetcher{
		protocol: protocol,
		fetch: func(_ context.Context, _, _ int) (*entity.Snapshot, error) {
			return &entity.Snapshot{Tokens: []entity.TokenPrice{{Symbol: symbol, PriceUSD: price}}}, nil
		},
	}
}

func failFetcher(protocol string, err error) *mockFetcher {
	return &mockFetcher{
		protocol: protocol,
		fetch: func(_ context.Context, _, _ int) (*entity.Snapshot, error) {
			return nil, err
		},
	}
}

func TestMarketUsecase_GetMarkets_AllSucceed(t *testing.T) {
	t.Parallel()

	u := NewMarketUsecase([]SnapshotFetcher{
		okFetcher("uniswap", "WETH", 3000),
		okFetcher("sushiswap", "WETH", 3010),
	})

	table, err := u.GetMarkets(context.Background(), nil, 0, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	if table.Rows[0].Price == nil || *table.Rows[0].Price != 3000 {
		t.Errorf("expected lower median 3000, got %v", table.Rows[0].Price)
	}
	if len(table.Errors) != 0 {
		t.Errorf("expected no errors, got %v", table.Errors)
	}
}

// 1プロトコルの失敗は空の寄与になり、Errorsに記録されます。
func TestMarketUsecase_GetMarkets_PartialFailure(t *testing.T) {
	t.Parallel()

	u := NewMarketUsecase([]SnapshotFetcher{
		okFetcher("uniswap", "WETH", 3000),
		okFetcher("sushiswap", "WETH", 3010),
		failFetcher("quickswap", errors.New("subgraph rejected query")),
		okFetcher("pancakeswap", "CAKE", 2.5),
	})

	table, err := u.GetMarkets(context.Background(), nil, 0, 300)
	if err != nil {
		t.Fatalf("expected partial result, got error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if msg, ok := table.Errors["quickswap"]; !ok || msg == "" {
		t.Errorf("expected quickswap failure recorded, got %v", table.Errors)
	}
	if len(table.Errors) != 1 {
		t.Errorf("expected exactly 1 failure, got %v", table.Errors)
	}
}

// 要求された全プロトコルが失敗した場合のみエラーです。
func TestMarketUsecase_GetMarkets_AllFail(t *testing.T) {
	t.Parallel()

	u := NewMarketUsecase([]SnapshotFetcher{
		failFetcher("uniswap", errors.New("gateway timeout")),
		failFetcher("sushiswap", errors.New("gateway timeout")),
	})

	if _, err := u.GetMarkets(context.Background(), nil, 0, 300); err == nil {
		t.Fatal("expected error when every protocol fails")
	}
}

// protocolsで対象を絞れます。未知の名前は無視されます。
func TestMarketUsecase_GetMarkets_ProtocolSelection(t *testing.T) {
	t.Parallel()

	uni := okFetcher("uniswap", "WETH", 3000)
	sushi := okFetcher("sushiswap", "WETH", 3010)
	u := NewMarketUsecase([]SnapshotFetcher{uni, sushi})

	table, err := u.GetMarkets(context.Background(), []string{"sushiswap", "osmosis"}, 0, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uni.calls != 0 {
		t.Errorf("expected uniswap to be skipped, calls = %d", uni.calls)
	}
	if sushi.calls != 1 {
		t.Errorf("expected sushiswap to be queried once, calls = %d", sushi.calls)
	}
	if *table.Rows[0].Price != 3010 {
		t.Errorf("expected sushiswap-only price 3010, got %v", *table.Rows[0].Price)
	}
}

// 既知のプロトコルが1つも残らなければ設定エラーです。
func TestMarketUsecase_GetMarkets_NoKnownProtocols(t *testing.T) {
	t.Parallel()

	u := NewMarketUsecase([]SnapshotFetcher{okFetcher("uniswap", "WETH", 3000)})
	if _, err := u.GetMarkets(context.Background(), []string{"osmosis"}, 0, 300); err == nil {
		t.Fatal("expected error when no requested protocol is configured")
	}
}

func TestMarketUsecase_Protocols(t *testing.T) {
	t.Parallel()

	u := NewMarketUsecase([]SnapshotFetcher{
		okFetcher("uniswap", "WETH", 3000),
		okFetcher("sushiswap", "WETH", 3010),
	})
	got := u.Protocols()
	want := []string{"uniswap", "sushiswap"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}
