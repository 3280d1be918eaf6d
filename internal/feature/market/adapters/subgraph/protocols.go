// Package subgraph はThe Graph上のDEX v3サブグラフからスナップショットを
// 取得するアダプタです。プロトコルごとの差分は記述子で表現し、
// 取得ロジックは1つのFetcherで共有します。
package subgraph

// QueryVariant は1つのスキーマ形状を表します。サブグラフによっては
// トークン価格の持ち方が異なるため、順に試すバリアントのリストを
// プロトコル記述子に持たせます（例外駆動の分岐はしない）。
type QueryVariant struct {
	// BundleField はbundlesエンティティのネイティブ資産USD価格フィールド名です。
	// 空の場合はbundleクエリを発行しません。
	BundleField string
	// DerivedField はtokensエンティティの価格フィールド名です。
	DerivedField string
	// Multiply がtrueの場合、トークン価格は derived × bundle価格 で求めます。
	// falseの場合はDerivedFieldが直接USD価格です。
	Multiply bool
}

// Protocol は1つのDEX v3サブグラフデプロイメントの記述子です。
type Protocol struct {
	ID         string // プロトコル識別子 (例: "uniswap")
	SubgraphID string // ゲートウェイのサブグラフID
	OrderBy    string // 流動性の指標フィールド。空の場合はorderBy句を省略
	Variants   []QueryVariant
}

// DefaultProtocols は対応プロトコルの既定記述子を有効化順で返します。
// サブグラフIDはoverridesで上書きできます（設定由来）。
func DefaultProtocols(overrides map[string]string) []Protocol {
	protocols := []Protocol{
		{
			ID:         "uniswap",
			SubgraphID: "5zvR82QoaXYFyDEKLZ9t6v9adgnptxYpKpSbxtgVENFV",
			OrderBy:    "totalValueLockedUSD",
			Variants: []QueryVariant{
				{BundleField: "ethPriceUSD", DerivedField: "derivedETH", Multiply: true},
			},
		},
		{
			ID:         "sushiswap",
			SubgraphID: "5nnoU1nUFeWqtXgbpC54zP2dTMYALusfyGTKnsFW5eNv",
			OrderBy:    "totalValueLockedUSD",
			Variants: []QueryVariant{
				{BundleField: "ethPriceUSD", DerivedField: "derivedETH", Multiply: true},
			},
		},
		{
			// QuickSwap (Polygon, Algebraスキーマ)。デプロイによってトークン価格の
			// フィールドが違うため、derivedMatic → derivedUSD の順で試します。
			ID:         "quickswap",
			SubgraphID: "FqsRcH1XqSjqVx9GRTvEJe959aCbKrcyGgDWBrUkG24g",
			OrderBy:    "totalValueLockedUSD",
			Variants: []QueryVariant{
				{BundleField: "maticPriceUSD", DerivedField: "derivedMatic", Multiply: true},
				{DerivedField: "derivedUSD", Multiply: false},
			},
		},
		{
			ID:         "pancakeswap",
			SubgraphID: "CJYGNhb7RvnhfBDjqpRnD3oxgyhibzc7fkAMa38YV3oS",
			OrderBy:    "totalValueLockedUSD",
			Variants: []QueryVariant{
				{BundleField: "ethPriceUSD", DerivedField: "derivedETH", Multiply: true},
			},
		},
	}

	for i := range protocols {
		if id, ok := overrides[protocols[i].ID]; ok {
			protocols[i].SubgraphID = id
		}
	}
	return protocols
}
