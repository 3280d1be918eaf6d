// Package entity defines the domain models for the candles feature.
package entity

// Candle represents one OHLCV bucket of a price series.
// Time is the unix-seconds start of the bucket and is unique within a History.
// Invariant: Low <= Open, Close <= High.
type Candle struct {
	Time   int64   `json:"time"`   // Bucket start, unix seconds
	Open   float64 `json:"open"`   // Opening price in USD
	High   float64 `json:"high"`   // Highest price during the bucket
	Low    float64 `json:"low"`    // Lowest price during the bucket
	Close  float64 `json:"close"`  // Closing price in USD
	Volume float64 `json:"volume"` // Traded volume; 0 when the source has none
}

// History is a candle sequence sorted strictly ascending by Time.
type History []Candle
