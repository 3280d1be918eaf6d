// Package symbols は自由入力のトークン識別子を各上流APIが期待する
// 正規形（ティッカーまたはコントラクトアドレス）へ変換します。
package symbols

import (
	"regexp"
	"strings"
)

// addressPattern は0xプレフィクス付き40桁16進のEVMアドレスに一致します。
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// nameToTicker はコイン名 → ティッカーの静的対応表です。
// CoinGecko系のコインIDと一般的な呼称の両方を載せています。
var nameToTicker = map[string]string{
	"bitcoin":         "BTC",
	"ethereum":        "ETH",
	"tether":          "USDT",
	"usd-coin":        "USDC",
	"usdcoin":         "USDC",
	"binancecoin":     "BNB",
	"ripple":          "XRP",
	"cardano":         "ADA",
	"solana":          "SOL",
	"dogecoin":        "DOGE",
	"polkadot":        "DOT",
	"polygon":         "MATIC",
	"matic-network":   "MATIC",
	"litecoin":        "LTC",
	"chainlink":       "LINK",
	"avalanche":       "AVAX",
	"avalanche-2":     "AVAX",
	"uniswap":         "UNI",
	"wrapped-bitcoin": "WBTC",
	"dai":             "DAI",
	"shiba-inu":       "SHIB",
	"tron":            "TRX",
	"cosmos":          "ATOM",
	"stellar":         "XLM",
	"near":            "NEAR",
	"aptos":           "APT",
	"arbitrum":        "ARB",
	"optimism":        "OP",
	"pancakeswap":     "CAKE",
	"sushi":           "SUSHI",
	"sushiswap":       "SUSHI",
	"lido-dao":        "LDO",
	"aave":            "AAVE",
	"maker":           "MKR",
	"curve-dao-token": "CRV",
}

// Normalize は入力をティッカーまたはアドレスの正規形へ変換します。
// 副作用なしの全域関数で、エラーは返しません。
//
//   - 空入力 → 空文字（呼び出し側は「問い合わせなし」として扱うこと）
//   - EVMアドレス → そのまま返す（Token API検索のため大文字小文字も保持）
//   - 対応表にある名前 → 対応するティッカー
//   - それ以外 → 大文字化して返す（既にティッカーとみなす）
func Normalize(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if addressPattern.MatchString(s) {
		return s
	}
	if ticker, ok := nameToTicker[strings.ToLower(s)]; ok {
		return ticker
	}
	return strings.ToUpper(s)
}

// IsAddress はEVMコントラクトアドレス形式かどうかを返します。
// アドレス形式のシンボルはティッカー系アダプタではなくToken APIへ回します。
func IsAddress(s string) bool {
	return addressPattern.MatchString(strings.TrimSpace(s))
}
