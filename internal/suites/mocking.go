package suites

import (
	"net/http"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/harness"
	"github.com/vk/fixturegrid/modules/api_client"
	"github.com/vk/fixturegrid/modules/mock_server"
)

// Mocking covers the mock server itself: route precedence, request
// recording and sequential responses.
func Mocking() harness.Suite {
	uses := []string{mock_server.FixtureName, api_client.FixtureName}
	return harness.Suite{
		{Name: "mocking/first-route-wins", Uses: uses, Fn: func(t *harness.T) {
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			api := harness.Get[*api_client.Client](t, api_client.FixtureName)
			srv.HandleStatus(mock_server.AnyMethod, "/admin/*", http.StatusForbidden)
			srv.HandleStatus(mock_server.AnyMethod, "*", http.StatusOK)

			resp, err := api.Do(t.Context(), http.MethodGet, "/admin/users", nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusForbidden, resp.Status)

			resp, err = api.Do(t.Context(), http.MethodGet, "/public", nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Status)
		}},
		{Name: "mocking/records-requests", Uses: uses, Fn: func(t *harness.T) {
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			api := harness.Get[*api_client.Client](t, api_client.FixtureName)
			srv.HandleStatus(http.MethodPost, "/events", http.StatusAccepted)

			for _, kind := range []string{"click", "view", "click"} {
				resp, err := api.Do(t.Context(), http.MethodPost, "/events", map[string]string{"kind": kind})
				require.NoError(t, err)
				assert.Equal(t, http.StatusAccepted, resp.Status)
			}
			assert.Equal(t, 3, srv.Count(http.MethodPost, "/events"))
			assert.Zero(t, srv.Count(http.MethodGet, "*"))
		}},
		{Name: "mocking/sequential-responses", Uses: uses, Fn: func(t *harness.T) {
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			api := harness.Get[*api_client.Client](t, api_client.FixtureName)
			srv.HandleSequence(http.MethodGet, "/status",
				httphelpers.HandlerWithStatus(http.StatusAccepted),
				httphelpers.HandlerWithStatus(http.StatusOK))

			var got []int
			for range 3 {
				resp, err := api.Do(t.Context(), http.MethodGet, "/status", nil)
				require.NoError(t, err)
				got = append(got, resp.Status)
			}
			assert.Equal(t, []int{http.StatusAccepted, http.StatusOK, http.StatusOK}, got)
		}},
		{Name: "mocking/isolated-per-test", Uses: uses, Fn: func(t *harness.T) {
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			assert.Empty(t, srv.Requests(), "every test gets its own server")
		}},
	}
}
