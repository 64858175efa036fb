package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"
)

const maxBackoff = 30 * time.Second

// TransportError means a ledger RPC call failed outright. It is returned to
// the caller after the client's own retries are exhausted.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ledger rpc %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// retryableError marks failures worth another attempt (network, 5xx, 429).
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

type ClientConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client speaks Sui JSON-RPC 2.0 over HTTP.
type Client struct {
	url        string
	http       *http.Client
	maxRetries int
	retryDelay time.Duration
	log        *slog.Logger
	nextID     atomic.Uint64
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		url:        cfg.URL,
		http:       httpClient,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		log:        log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Call invokes method and decodes the result into out. Transient failures
// are retried with exponential backoff and full jitter.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.log.Warn("Retrying ledger rpc", "method", method, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return &TransportError{Method: method, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		err := c.do(ctx, method, params, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var re *retryableError
		if !errors.As(err, &re) || ctx.Err() != nil {
			break
		}
	}
	return &TransportError{Method: method, Err: lastErr}
}

func (c *Client) backoff(attempt int) time.Duration {
	if c.retryDelay <= 0 {
		return 0
	}
	d := c.retryDelay << (attempt - 1)
	if d <= 0 || d > maxBackoff {
		d = maxBackoff
	}
	return time.Duration(rand.Int64N(int64(d))) + 1
}

func (c *Client) do(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &retryableError{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return &retryableError{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// EventID is the cursor position of an event.
type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

type Event struct {
	ID          EventID         `json:"id"`
	Type        string          `json:"type"`
	Sender      string          `json:"sender"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
	TimestampMs string          `json:"timestampMs"`
}

type EventPage struct {
	Data        []Event  `json:"data"`
	NextCursor  *EventID `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}

type MoveContent struct {
	DataType string                     `json:"dataType"`
	Type     string                     `json:"type"`
	Fields   map[string]json.RawMessage `json:"fields"`
}

type ObjectData struct {
	ObjectID string       `json:"objectId"`
	Version  string       `json:"version"`
	Digest   string       `json:"digest"`
	Type     string       `json:"type"`
	Content  *MoveContent `json:"content"`
}

type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("object %s: %s", e.ObjectID, e.Code)
}

type ObjectResponse struct {
	Data  *ObjectData  `json:"data"`
	Error *ObjectError `json:"error"`
}

type OwnedObjectsPage struct {
	Data        []ObjectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// QueryEvents wraps suix_queryEvents filtered by Move event type.
func (c *Client) QueryEvents(ctx context.Context, eventType string, cursor *EventID, limit int, descending bool) (*EventPage, error) {
	var page EventPage
	params := []any{
		map[string]string{"MoveEventType": eventType},
		cursor,
		limit,
		descending,
	}
	if err := c.Call(ctx, "suix_queryEvents", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetObject wraps sui_getObject with content enabled.
func (c *Client) GetObject(ctx context.Context, id string) (*ObjectResponse, error) {
	var resp ObjectResponse
	params := []any{id, map[string]bool{"showContent": true, "showType": true}}
	if err := c.Call(ctx, "sui_getObject", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOwnedObjects wraps suix_getOwnedObjects filtered by struct type.
func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string, cursor *string, limit int) (*OwnedObjectsPage, error) {
	var page OwnedObjectsPage
	query := map[string]any{
		"filter":  map[string]string{"StructType": structType},
		"options": map[string]bool{"showContent": true, "showType": true},
	}
	params := []any{owner, query, cursor, limit}
	if err := c.Call(ctx, "suix_getOwnedObjects", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// LatestCheckpoint wraps sui_getLatestCheckpointSequenceNumber. The node
// returns the number as a decimal string.
func (c *Client) LatestCheckpoint(ctx context.Context) (string, error) {
	var seq string
	if err := c.Call(ctx, "sui_getLatestCheckpointSequenceNumber", []any{}, &seq); err != nil {
		return "", err
	}
	return seq, nil
}
