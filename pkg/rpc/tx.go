package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/models"
)

// Tx is the decoded body of a transaction as rendered by the REST gateway.
type Tx struct {
	Body struct {
		Messages []json.RawMessage `json:"messages"`
		Memo     string            `json:"memo"`
	} `json:"body"`
	AuthInfo struct {
		Fee struct {
			Amount   []models.Coin `json:"amount"`
			GasLimit flexUint      `json:"gas_limit"`
		} `json:"fee"`
	} `json:"auth_info"`
}

// TxResponse is the execution result of a transaction.
type TxResponse struct {
	Height    flexUint `json:"height"`
	TxHash    string   `json:"txhash"`
	Codespace string   `json:"codespace"`
	Code      uint32   `json:"code"`
	RawLog    string   `json:"raw_log"`
	GasWanted flexUint `json:"gas_wanted"`
	GasUsed   flexUint `json:"gas_used"`
	Timestamp string   `json:"timestamp"`
	Logs      []struct {
		Events []Event `json:"events"`
	} `json:"logs"`
	Events []Event `json:"events"`
}

// TxEnvelope pairs a transaction with its execution result. Response is nil when the gateway
// returned no result for it.
type TxEnvelope struct {
	Tx       Tx
	Response *TxResponse
}

// TxsResponse represents the response from the tx search endpoint.
type TxsResponse struct {
	Txs         []Tx         `json:"txs"`
	TxResponses []TxResponse `json:"tx_responses"`
}

// Envelopes pairs txs with their responses by index.
func (r *TxsResponse) Envelopes() []TxEnvelope {
	n := len(r.Txs)
	if len(r.TxResponses) > n {
		n = len(r.TxResponses)
	}
	out := make([]TxEnvelope, 0, n)
	for i := 0; i < n; i++ {
		var env TxEnvelope
		if i < len(r.Txs) {
			env.Tx = r.Txs[i]
		}
		if i < len(r.TxResponses) {
			resp := r.TxResponses[i]
			env.Response = &resp
		}
		out = append(out, env)
	}
	return out
}

// GetTxResponse represents the response from the tx-by-hash endpoint.
type GetTxResponse struct {
	Tx         Tx          `json:"tx"`
	TxResponse *TxResponse `json:"tx_response"`
}

// TxsByEvent searches transactions matching an event query such as message.sender='addr'.
// Newest first, at most limit results.
func (c *HTTPClient) TxsByEvent(ctx context.Context, event string, limit int) ([]TxEnvelope, error) {
	path := fmt.Sprintf(txsByEventsPath, url.QueryEscape(event), limit)
	var out TxsResponse
	if err := c.FetchJSON(ctx, BaseREST, path, FetchOpts{Timeout: HistoryTimeout}, &out); err != nil {
		return nil, err
	}
	return out.Envelopes(), nil
}

// TxByHash returns one transaction by its canonical hash.
func (c *HTTPClient) TxByHash(ctx context.Context, hash string) (*TxEnvelope, error) {
	var out GetTxResponse
	if err := c.FetchJSON(ctx, BaseREST, fmt.Sprintf(txByHashPath, url.PathEscape(hash)), FetchOpts{}, &out); err != nil {
		return nil, err
	}
	return &TxEnvelope{Tx: out.Tx, Response: out.TxResponse}, nil
}

// Fee returns the first fee coin of the transaction.
func (e *TxEnvelope) Fee() (models.Coin, bool) {
	if len(e.Tx.AuthInfo.Fee.Amount) == 0 {
		return models.Coin{}, false
	}
	return e.Tx.AuthInfo.Fee.Amount[0], true
}

// Events returns the response events, falling back to the first log's events on older gateways.
func (e *TxEnvelope) Events() []Event {
	if e.Response == nil {
		return nil
	}
	if len(e.Response.Events) > 0 {
		return e.Response.Events
	}
	if len(e.Response.Logs) > 0 {
		return e.Response.Logs[0].Events
	}
	return nil
}

// Status maps the execution result to a TxStatus.
func (e *TxEnvelope) Status() models.TxStatus {
	switch {
	case e.Response == nil || e.Response.Height == 0:
		return models.TxStatusPending
	case e.Response.Code != 0:
		return models.TxStatusFailed
	default:
		return models.TxStatusSuccess
	}
}

// DecodeTransaction normalizes an envelope into a TransactionDetail using the first message.
// fallback is used as timestamp when the gateway omits one.
func DecodeTransaction(env TxEnvelope, fallback time.Time) (models.TransactionDetail, error) {
	detail := models.TransactionDetail{
		Type:      string(MsgKindUnknown),
		Timestamp: fallback,
		Status:    env.Status(),
		Memo:      env.Tx.Body.Memo,
	}
	if env.Response != nil {
		detail.Hash = env.Response.TxHash
		detail.Height = uint64(env.Response.Height)
		detail.RawLog = env.Response.RawLog
		if ts, err := time.Parse(time.RFC3339Nano, env.Response.Timestamp); err == nil {
			detail.Timestamp = ts
		}
	}
	if detail.Hash == "" {
		detail.Hash = "unknown"
	}

	if len(env.Tx.Body.Messages) == 0 {
		return detail, nil
	}
	msg, err := DecodeMessage(env.Tx.Body.Messages[0])
	if err != nil {
		return detail, err
	}
	if msg.TypeURL() != "" {
		detail.Type = msg.TypeURL()
	}
	msg.Apply(&detail, env.Events())
	return detail, nil
}
