package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterAPI mimics the counter service routes under /api.
type counterAPI struct {
	mu     sync.Mutex
	total  int64
	failed bool
	reads  int
}

func (c *counterAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if c.failed {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "connection refused"})
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/total-trees":
		c.reads++
		json.NewEncoder(w).Encode(TotalTreesResponse{TotalTrees: c.total})
	case r.Method == http.MethodPost && r.URL.Path == "/api/add-tree":
		c.total++
		json.NewEncoder(w).Encode(TotalTreesResponse{TotalTrees: c.total})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (c *counterAPI) setFailed(failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = failed
}

func (c *counterAPI) snapshot() (int64, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, c.reads
}

func newCounterAPI(t *testing.T) (*counterAPI, *apiClient) {
	t.Helper()
	api := &counterAPI{}
	server := httptest.NewServer(api)
	t.Cleanup(func() {
		server.CloseClientConnections()
		server.Close()
	})
	return api, newAPIClient(server.URL+"/api/", server.Client())
}

func TestAPIClientAddAndRead(t *testing.T) {
	ctx := context.Background()
	_, client := newCounterAPI(t)

	total, err := client.TotalTrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	total, err = client.AddTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = client.TotalTrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAPIClientServerError(t *testing.T) {
	api, client := newCounterAPI(t)
	api.setFailed(true)

	_, err := client.AddTree(context.Background())
	require.Error(t, err)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "connection refused", apiErr.Message)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAPIClientRejectsUnexpectedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":3}`))
	}))
	defer server.Close()

	_, err := newAPIClient(server.URL, server.Client()).TotalTrees(context.Background())
	assert.Error(t, err)
}

func TestAccumulatorNotifiesCounterAPI(t *testing.T) {
	api, client := newCounterAPI(t)
	acc := NewAccumulator(newTestStore(t), client, nil)

	for i := 0; i < 3*ClicksPerTree; i++ {
		_, err := acc.RecordClick(context.Background())
		require.NoError(t, err)
	}
	acc.Wait()

	total, _ := api.snapshot()
	assert.Equal(t, int64(3), total)
}
