// Package upstream defines the error taxonomy shared by all external-API
// adapters. Composition points (fallback chains, multi-protocol fan-out)
// classify failures with errors.As against these types.
package upstream

import (
	"fmt"
	"strings"
)

// ConfigError は必須の資格情報・設定値が欠けていることを表します。
// 該当アダプタの呼び出しは失敗しますが、プロセスは停止しません。
type ConfigError struct {
	Name string // 欠けている設定値の名前 (例: "GRAPH_API_KEY")
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required config %s", e.Name)
}

// HTTPError は外部APIが非2xxステータスを返したことを表します。
type HTTPError struct {
	Source  string // アダプタ名 (例: "binance")
	Status  int
	Message string // レスポンスボディ由来のメッセージ（取得できた場合）
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: http %d: %s", e.Source, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: http %d", e.Source, e.Status)
}

// SchemaError はレスポンスボディが期待した形と一致しないことを表します。
// フォールバック・部分失敗の扱いではHTTPエラーと同等の失敗とみなします。
type SchemaError struct {
	Source string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: unexpected response shape: %s", e.Source, e.Reason)
}

// GraphQLError はサブグラフが200を返しつつerrors配列を含んだことを表します。
// 常にそのアダプタ呼び出し全体の失敗です（部分結果は採用しません）。
type GraphQLError struct {
	Source   string
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("%s: graphql: %s", e.Source, strings.Join(e.Messages, "; "))
}
