package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/centime-app/centime/internal/common"
	"github.com/centime-app/centime/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{URL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestClient_Lookup(t *testing.T) {
	var requests atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/v1/merchants", r.URL.Path)
		assert.Equal(t, "netflix", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag":"streaming","expense_type":"FIXED","confidence":0.9}`))
	})

	hint, err := client.Lookup(context.Background(), "netflix")
	require.NoError(t, err)
	require.NotNil(t, hint)
	assert.Equal(t, "streaming", hint.Tag)
	assert.Equal(t, model.ExpenseFixed, hint.ExpenseType)
	assert.InDelta(t, 0.9, hint.Confidence, 0.001)
	assert.Equal(t, int32(1), requests.Load())
}

func TestClient_LookupCachesResults(t *testing.T) {
	var requests atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"tag":"groceries","expense_type":"VARIABLE","confidence":0.8}`))
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		hint, err := client.Lookup(ctx, "carrefour")
		require.NoError(t, err)
		require.NotNil(t, hint)
	}

	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, 1, client.CacheSize())
}

func TestClient_LookupCachesMisses(t *testing.T) {
	var requests atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		hint, err := client.Lookup(ctx, "obscure merchant")
		require.NoError(t, err)
		assert.Nil(t, hint)
	}

	assert.Equal(t, int32(1), requests.Load())
}

func TestClient_LookupUnknownExpenseTypeDefaultsToVariable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag":"misc","expense_type":"WEEKLY","confidence":1.7}`))
	})

	hint, err := client.Lookup(context.Background(), "misc merchant")
	require.NoError(t, err)
	require.NotNil(t, hint)
	assert.Equal(t, model.ExpenseVariable, hint.ExpenseType)
	assert.InDelta(t, 1.0, hint.Confidence, 0.001)
}

func TestClient_LookupRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Lookup(context.Background(), "netflix")
	assert.ErrorIs(t, err, common.ErrRateLimit)
}

func TestClient_LookupServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := client.Lookup(context.Background(), "netflix")
	assert.Error(t, err)
}

func TestClient_EmptyMerchantKeyIsNoop(t *testing.T) {
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for empty merchant key")
	})

	hint, err := client.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, hint)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, common.ErrEnrichmentDisabled)
}
