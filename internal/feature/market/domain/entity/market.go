// Package entity defines the domain models for the market feature.
package entity

// TokenPrice is one token quote from one protocol, already converted to USD.
type TokenPrice struct {
	Symbol   string  `json:"symbol"`   // Canonical ticker, uppercase, trimmed
	PriceUSD float64 `json:"priceUSD"` // Always > 0; non-positive quotes are discarded upstream
}

// PoolInfo is one concentrated-liquidity pool snapshot entry.
type PoolInfo struct {
	Pair string `json:"pair"` // "SYM0/SYM1"
	Tick int64  `json:"tick"` // Current tick of the pool
}

// Snapshot is the result of one DEX subgraph query anchored to one block.
type Snapshot struct {
	BlockNumber int64        `json:"blockNumber"`
	SecondsAgo  int          `json:"secondsAgo"`
	Tokens      []TokenPrice `json:"tokens"`
	Pools       []PoolInfo   `json:"pools"`
}

// MarketRow is one aggregated row of the cross-protocol market table.
// Price is nil when the symbol was suppressed as a probable bad print.
type MarketRow struct {
	Symbol     string             `json:"symbol"`
	Price      *float64           `json:"price"`
	ByProtocol map[string]float64 `json:"byProtocol"`
}

// MarketTable is the aggregation output: one row per distinct symbol in
// discovery order, pools concatenated in protocol-enable order, and the
// per-protocol fetch errors that were downgraded to empty contributions.
type MarketTable struct {
	Rows   []MarketRow       `json:"rows"`
	Pairs  []PoolInfo        `json:"pairs"`
	Errors map[string]string `json:"errors,omitempty"`
}
