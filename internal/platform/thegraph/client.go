// Package thegraph はThe GraphゲートウェイへのGraphQLクエリ実行を提供します。
//
// パック内にGraphQLクライアントライブラリを使う前例がないこと、また
// errors配列をGraphQLErrorとして分類するため生のレスポンスに触れる必要が
// あることから、アダプタと同じnet/httpの作法で実装しています。
package thegraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sarahoor/Final-TraDex/internal/platform/upstream"
)

// Client executes GraphQL queries against gateway-hosted subgraphs.
type Client struct {
	gatewayURL string // 例: "https://gateway.thegraph.com/api/subgraphs/id"
	apiKey     string
	client     *http.Client
}

// NewClient は構築時にAPIキーを検証します（初回利用時ではなく）。
func NewClient(gatewayURL, apiKey string, client *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, &upstream.ConfigError{Name: "GRAPH_API_KEY"}
	}
	return &Client{gatewayURL: gatewayURL, apiKey: apiKey, client: client}, nil
}

// request is the GraphQL-over-HTTP request envelope.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// response is the GraphQL-over-HTTP response envelope.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query はサブグラフへクエリをPOSTし、dataフィールドをoutへデコードします。
// errors配列が空でない場合は常にGraphQLErrorを返し、部分結果は採用しません。
// sourceはエラーメッセージに載せるアダプタ名です。
func (c *Client) Query(ctx context.Context, subgraphID, source, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/%s", c.gatewayURL, subgraphID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &upstream.HTTPError{Source: source, Status: res.StatusCode, Message: string(msg)}
	}

	var envelope response
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return &upstream.SchemaError{Source: source, Reason: err.Error()}
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return &upstream.GraphQLError{Source: source, Messages: msgs}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return &upstream.SchemaError{Source: source, Reason: "missing data field"}
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &upstream.SchemaError{Source: source, Reason: err.Error()}
	}
	return nil
}
