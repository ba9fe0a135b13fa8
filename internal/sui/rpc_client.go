package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"spin-rewards/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// NewHTTPClient creates a new SUI RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ RPCClient = (*HTTPClient)(nil)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordRPCLatency(method, time.Since(start).Seconds(), err)
	}()

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		// RPC errors are not retried
		if rpcResp.Error != nil {
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetTransactionBlock retrieves an executed transaction with its effects and balance changes.
func (c *HTTPClient) GetTransactionBlock(ctx context.Context, digest string) (*TransactionBlock, error) {
	params := []interface{}{
		digest,
		map[string]interface{}{
			"showInput":          true,
			"showEffects":        true,
			"showBalanceChanges": true,
		},
	}

	var result getTransactionBlockResult
	if err := c.call(ctx, "sui_getTransactionBlock", params, &result); err != nil {
		if isNotFound(err) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if result.Digest == "" {
		return nil, ErrTransactionNotFound
	}

	tx := &TransactionBlock{Digest: result.Digest}

	if result.Transaction != nil && result.Transaction.Data != nil {
		tx.Sender = normalizeOrKeep(result.Transaction.Data.Sender)
	}
	if result.Effects != nil && result.Effects.Status != nil {
		tx.Status = result.Effects.Status.Status
		tx.Error = result.Effects.Status.Error
	}
	if result.TimestampMs != "" {
		ts, err := strconv.ParseInt(result.TimestampMs, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse timestampMs: %w", err)
		}
		tx.TimestampMs = ts
	}

	for _, bc := range result.BalanceChanges {
		amount, err := decimal.NewFromString(bc.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse balance change amount %q: %w", bc.Amount, err)
		}
		tx.BalanceChanges = append(tx.BalanceChanges, BalanceChange{
			Owner:    normalizeOrKeep(bc.Owner.address()),
			CoinType: bc.CoinType,
			Amount:   amount,
		})
	}

	return tx, nil
}

// normalizeOrKeep normalizes addresses reported by the node so they compare
// equal to user input; anything else is returned unchanged.
func normalizeOrKeep(addr string) string {
	if n, err := NormalizeAddress(addr); err == nil {
		return n
	}
	return addr
}

// isNotFound detects the node's error for unknown digests.
func isNotFound(err error) bool {
	rpcErr, ok := err.(*rpcError)
	if !ok {
		return false
	}
	msg := strings.ToLower(rpcErr.Message)
	return strings.Contains(msg, "could not find") || strings.Contains(msg, "not found")
}

// getTransactionBlockResult is the raw RPC response for sui_getTransactionBlock.
type getTransactionBlockResult struct {
	Digest         string             `json:"digest"`
	Transaction    *rawTransaction    `json:"transaction"`
	Effects        *rawEffects        `json:"effects"`
	BalanceChanges []rawBalanceChange `json:"balanceChanges"`
	TimestampMs    string             `json:"timestampMs"`
}

type rawTransaction struct {
	Data *rawTransactionData `json:"data"`
}

type rawTransactionData struct {
	Sender string `json:"sender"`
}

type rawEffects struct {
	Status *rawExecutionStatus `json:"status"`
}

type rawExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type rawBalanceChange struct {
	Owner    rawOwner `json:"owner"`
	CoinType string   `json:"coinType"`
	Amount   string   `json:"amount"`
}

// rawOwner is an owner enum; only address ownership is meaningful for payments.
type rawOwner struct {
	AddressOwner string `json:"AddressOwner"`
}

// UnmarshalJSON tolerates the string variants ("Immutable") of the owner enum.
func (o *rawOwner) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*o = rawOwner{}
		return nil
	}
	type plain rawOwner
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = rawOwner(p)
	return nil
}

// address returns the owning account. Object-owned and shared balances
// have no account owner and return "".
func (o rawOwner) address() string {
	return o.AddressOwner
}
