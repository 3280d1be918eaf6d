// Package config loads the server configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the server reads from the environment.
// Credentials are validated by the component that needs them, not here,
// so the server can still start in mock-only mode without any keys.
type Config struct {
	ListenAddr string // Address for the HTTP server (e.g. ":8080")

	BinanceBaseURL   string // Base URL for the Binance klines API
	CoinGeckoBaseURL string // Base URL for the CoinGecko API
	TokenAPIBaseURL  string // Base URL for the Token API
	GraphGatewayURL  string // Base URL of The Graph gateway

	GraphAPIKey   string // API key for The Graph gateway
	TokenAPIToken string // Bearer token for the Token API

	// SubgraphIDs overrides the built-in subgraph deployment IDs,
	// keyed by protocol (SUBGRAPH_ID_UNISWAP and friends).
	SubgraphIDs map[string]string

	RedisAddr     string // Redis address; empty disables the shared cache
	RedisPassword string

	SnapshotTTL time.Duration // Freshness window for market snapshots
	HTTPTimeout time.Duration // Per-request timeout for upstream calls
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first when present (local development).
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded configuration from .env file")
	}

	return Config{
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		BinanceBaseURL:   getenv("BINANCE_BASE_URL", "https://api.binance.com"),
		CoinGeckoBaseURL: getenv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		TokenAPIBaseURL:  getenv("TOKEN_API_BASE_URL", "https://token-api.thegraph.com"),
		GraphGatewayURL:  getenv("GRAPH_GATEWAY_URL", "https://gateway.thegraph.com/api/subgraphs/id"),
		GraphAPIKey:      os.Getenv("GRAPH_API_KEY"),
		TokenAPIToken:    os.Getenv("TOKEN_API_TOKEN"),
		SubgraphIDs:      subgraphOverrides(),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		SnapshotTTL:      60 * time.Second,
		HTTPTimeout:      10 * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// subgraphOverrides collects SUBGRAPH_ID_<PROTOCOL> variables into a map
// keyed by the lowercase protocol identifier.
func subgraphOverrides() map[string]string {
	const prefix = "SUBGRAPH_ID_"
	overrides := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix) || v == "" {
			continue
		}
		overrides[strings.ToLower(strings.TrimPrefix(k, prefix))] = v
	}
	return overrides
}
