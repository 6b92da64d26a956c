package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-wallet/lantern/internal/nodes"
)

func testNode(uri string) nodes.Node {
	return nodes.Node{ID: "test", Label: "Test", URI: uri}
}

func TestCall(t *testing.T) {
	t.Parallel()

	var gotAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json_rpc", r.URL.Path)
		_, _, gotAuth = r.BasicAuth()

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req["jsonrpc"])
		assert.Equal(t, "get_info", req["method"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req["id"],
			"result":  map[string]any{"height": 3100000, "target_height": 3100000, "synchronized": true},
		})
	}))
	defer server.Close()

	client := NewClient(testNode(server.URL), nil)
	defer client.Close()

	info, err := client.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3_100_000), info.Height)
	assert.True(t, info.Synchronized)
	assert.False(t, gotAuth)
}

func TestCallBasicAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "hunter2", pass)
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": map[string]any{}})
	}))
	defer server.Close()

	node := testNode(server.URL)
	node.Username = "alice"
	node.Password = "hunter2"

	client := NewClient(node, nil)
	defer client.Close()
	require.NoError(t, client.Call(context.Background(), "get_info", nil, nil))
}

func TestCallRPCError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32601, "message": "method not found"},
		})
	}))
	defer server.Close()

	client := NewClient(testNode(server.URL), nil)
	defer client.Close()

	err := client.Call(context.Background(), "bogus", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
	assert.False(t, IsRetryable(err))
}

func TestCallServerErrorRetryable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testNode(server.URL), nil)
	defer client.Close()

	err := client.Call(context.Background(), "get_info", nil, nil)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	err := RetryWithConfig(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return ErrRetryable
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	attempts := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	err := RetryWithConfig(context.Background(), cfg, func() error {
		attempts++
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, attempts)
}

func TestRateLimiterAllow(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 2)
	assert.True(t, limiter.Allow("https://a:1"))
	assert.True(t, limiter.Allow("https://a:1"))
	assert.False(t, limiter.Allow("https://a:1"))

	// Separate endpoints have independent buckets.
	assert.True(t, limiter.Allow("https://b:1"))
}
