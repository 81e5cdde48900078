package api_client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/retry"
	"github.com/vk/fixturegrid/modules/mock_server"
)

func newServer(t *testing.T) *mock_server.Server {
	t.Helper()
	s := mock_server.New()
	t.Cleanup(s.Close)
	return s
}

func TestClient_JSON(t *testing.T) {
	srv := newServer(t)
	require.NoError(t, srv.HandleJSON(http.MethodGet, "/users/1", http.StatusOK, map[string]any{"id": 1, "name": "ada"}))
	require.NoError(t, srv.HandleJSON(http.MethodPost, "/users", http.StatusCreated, map[string]any{"id": 2}))

	c := NewClient(http.DefaultClient, srv.URL()+"/", retry.Once)
	ctx := context.Background()

	var user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, c.GetJSON(ctx, "/users/1", &user))
	assert.Equal(t, "ada", user.Name)

	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, c.PostJSON(ctx, "/users", map[string]string{"name": "bob"}, &created))
	assert.Equal(t, 2, created.ID)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.JSONEq(t, `{"name":"bob"}`, string(reqs[1].Body))
	assert.Equal(t, "application/json", reqs[1].Header.Get("Content-Type"))
}

func TestClient_StatusError(t *testing.T) {
	srv := newServer(t)
	c := NewClient(http.DefaultClient, srv.URL(), retry.Once)

	var out map[string]any
	err := c.GetJSON(context.Background(), "/missing", &out)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Contains(t, err.Error(), "no mock route")
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		srv := newServer(t)
		srv.HandleSequence(http.MethodGet, "/flaky",
			httphelpers.HandlerWithStatus(http.StatusServiceUnavailable),
			httphelpers.HandlerWithStatus(http.StatusBadGateway),
			httphelpers.HandlerWithStatus(http.StatusOK))

		c := NewClient(http.DefaultClient, srv.URL(), retry.Policy{MaxAttempts: 3})
		resp, err := c.Do(context.Background(), http.MethodGet, "/flaky", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, 3, srv.Count(http.MethodGet, "/flaky"))
	})

	t.Run("exhausted returns last response", func(t *testing.T) {
		srv := newServer(t)
		srv.HandleStatus(http.MethodGet, "/down", http.StatusGatewayTimeout)

		c := NewClient(http.DefaultClient, srv.URL(), retry.Policy{MaxAttempts: 2})
		resp, err := c.Do(context.Background(), http.MethodGet, "/down", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusGatewayTimeout, resp.Status)
		assert.Equal(t, 2, srv.Count(http.MethodGet, "/down"))
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		srv := newServer(t)
		srv.HandleStatus(http.MethodGet, "/bad", http.StatusBadRequest)

		c := NewClient(http.DefaultClient, srv.URL(), retry.Policy{MaxAttempts: 5})
		resp, err := c.Do(context.Background(), http.MethodGet, "/bad", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, 1, srv.Count(mock_server.AnyMethod, "*"))
	})
}

func TestClient_GetDocument(t *testing.T) {
	srv := newServer(t)
	srv.HandleHTML(http.MethodGet, "/", `<html><body><h1 class="title">Welcome</h1><a href="/a">A</a><a href="/b">B</a></body></html>`)

	c := NewClient(http.DefaultClient, srv.URL(), retry.Once)
	doc, err := c.GetDocument(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", doc.Find("h1.title").Text())
	assert.Equal(t, 2, doc.Find("a").Length())
}
