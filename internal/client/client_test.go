package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/client"
	"taskpilot/internal/model"
)

// countingServer serves canned list responses and counts fetches per path.
type countingServer struct {
	taskFetches  atomic.Int64
	eventFetches atomic.Int64
	*httptest.Server
}

func newCountingServer(t *testing.T) *countingServer {
	t.Helper()
	cs := &countingServer{}

	// Method-prefixed ServeMux patterns need Go 1.22+; dispatch on
	// r.Method by hand so the server behaves the same on Go 1.21.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cs.taskFetches.Add(1)
			json.NewEncoder(w).Encode([]model.Task{{ID: "t1", Title: "task one"}})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(model.Task{ID: "t2", Title: "created"})
		default:
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/timeline", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		cs.eventFetches.Add(1)
		json.NewEncoder(w).Encode([]model.TimelineEvent{{ID: "e1", Title: "event one"}})
	})
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

func TestTasksCachedPerIdentity(t *testing.T) {
	srv := newCountingServer(t)
	c := client.New(srv.URL, nil)
	c.SetIdentity("anon-1", false)

	ctx := context.Background()

	first, err := c.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := c.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The second read came from cache.
	assert.Equal(t, int64(1), srv.taskFetches.Load())
}

func TestIdentityChangeInvalidatesCache(t *testing.T) {
	srv := newCountingServer(t)
	c := client.New(srv.URL, nil)
	c.SetIdentity("anon-1", false)

	ctx := context.Background()

	_, err := c.Tasks(ctx)
	require.NoError(t, err)
	_, err = c.Events(ctx)
	require.NoError(t, err)

	// Login: same person, new identity. Both caches drop.
	c.SetIdentity("user-1", true)

	_, err = c.Tasks(ctx)
	require.NoError(t, err)
	_, err = c.Events(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), srv.taskFetches.Load())
	assert.Equal(t, int64(2), srv.eventFetches.Load())
}

func TestSameIdentityKeepsCache(t *testing.T) {
	srv := newCountingServer(t)
	c := client.New(srv.URL, nil)
	c.SetIdentity("anon-1", false)

	ctx := context.Background()

	_, err := c.Tasks(ctx)
	require.NoError(t, err)

	// Setting the identity to its current value is a no-op.
	c.SetIdentity("anon-1", false)

	_, err = c.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), srv.taskFetches.Load())
}

func TestAuthFlagIsPartOfIdentity(t *testing.T) {
	srv := newCountingServer(t)
	c := client.New(srv.URL, nil)
	c.SetIdentity("u1", false)

	ctx := context.Background()

	_, err := c.Tasks(ctx)
	require.NoError(t, err)

	// Same id but now verified: treated as a different identity.
	c.SetIdentity("u1", true)

	_, err = c.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), srv.taskFetches.Load())
}

func TestWritesInvalidateResourceCache(t *testing.T) {
	srv := newCountingServer(t)
	c := client.New(srv.URL, nil)
	c.SetIdentity("anon-1", false)

	ctx := context.Background()

	_, err := c.Tasks(ctx)
	require.NoError(t, err)
	_, err = c.Events(ctx)
	require.NoError(t, err)

	_, err = c.CreateTask(ctx, map[string]interface{}{"title": "new", "estimatedTime": 10})
	require.NoError(t, err)

	_, err = c.Tasks(ctx)
	require.NoError(t, err)
	_, err = c.Events(ctx)
	require.NoError(t, err)

	// Task cache refetched after the write, event cache untouched.
	assert.Equal(t, int64(2), srv.taskFetches.Load())
	assert.Equal(t, int64(1), srv.eventFetches.Load())
}

func TestDeleteInvalidates(t *testing.T) {
	srv := newCountingServer(t)
	c := client.New(srv.URL, nil)
	c.SetIdentity("anon-1", false)

	ctx := context.Background()

	_, err := c.Tasks(ctx)
	require.NoError(t, err)

	require.NoError(t, c.DeleteTask(ctx, "t1"))

	_, err = c.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), srv.taskFetches.Load())
}

func TestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "must not be empty"})
	}))
	t.Cleanup(srv.Close)

	c := client.New(srv.URL, nil)
	_, err := c.Tasks(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
	assert.Contains(t, err.Error(), "400")
}
