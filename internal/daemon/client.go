// Package daemon provides a minimal JSON-RPC 2.0 client for remote
// lantern daemon nodes, with per-endpoint rate limiting and retry.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lantern-wallet/lantern/internal/nodes"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// rpcPath is the JSON-RPC endpoint path on a lantern daemon.
const rpcPath = "/json_rpc"

// Client is a JSON-RPC 2.0 client bound to a single node.
type Client struct {
	node       nodes.Node
	httpClient *http.Client
	limiter    *RateLimiter
	idCounter  atomic.Uint64
}

// NewClient creates a client for the given node. A nil limiter disables
// rate limiting.
func NewClient(node nodes.Node, limiter *RateLimiter) *Client {
	return &Client{
		node:       node,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
	}
}

// Node returns the node this client is bound to.
func (c *Client) Node() nodes.Node {
	return c.node
}

// request represents a JSON-RPC 2.0 request. Params is an object, not a
// positional array, matching the daemon's named-parameter convention.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint64 `json:"id"`
}

// response represents a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Call performs a JSON-RPC call and unmarshals the result into out when
// out is non-nil.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.node.URI); err != nil {
			return err
		}
	}

	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.idCounter.Add(1),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.node.URI+rpcPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.node.Username != "" {
		httpReq.SetBasicAuth(c.node.Username, c.node.Password)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return WrapRetryable(lanternerr.WithCause(lanternerr.ErrNetworkError, err))
	}
	// Body.Close error is intentionally ignored as it only fails if the
	// connection is already broken, and there's no recovery action.
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, httpResp.StatusCode)
	}
	if httpResp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrRetryable, httpResp.StatusCode)
	}
	if httpResp.StatusCode != http.StatusOK {
		return lanternerr.WithDetails(lanternerr.ErrNetworkError,
			map[string]string{"status": httpResp.Status})
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

// infoResult is the subset of get_info the client consumes.
type infoResult struct {
	Height       uint64 `json:"height"`
	TargetHeight uint64 `json:"target_height"`
	Synchronized bool   `json:"synchronized"`
}

// Info describes the daemon's view of the chain.
type Info struct {
	Height       uint64
	TargetHeight uint64
	Synchronized bool
}

// GetInfo returns the daemon's chain status.
func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	var result infoResult
	err := RetryWithConfig(ctx, DefaultRetryConfig(), func() error {
		return c.Call(ctx, "get_info", nil, &result)
	})
	if err != nil {
		return nil, err
	}
	return &Info{
		Height:       result.Height,
		TargetHeight: result.TargetHeight,
		Synchronized: result.Synchronized,
	}, nil
}

// Close releases client resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
