package suites

import (
	"errors"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/harness"
	"github.com/vk/fixturegrid/modules/api_client"
	"github.com/vk/fixturegrid/modules/mock_server"
)

type user struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// API exercises the api client against routes declared on the mock server.
func API() harness.Suite {
	uses := []string{mock_server.FixtureName, api_client.FixtureName}
	return harness.Suite{
		{Name: "api/get-user", Uses: uses, Fn: func(t *harness.T) {
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			api := harness.Get[*api_client.Client](t, api_client.FixtureName)
			require.NoError(t, srv.HandleJSON(http.MethodGet, "/users/1", http.StatusOK, user{ID: 1, Name: "Ada"}))

			var got user
			require.NoError(t, api.GetJSON(t.Context(), "/users/1", &got))
			assert.Equal(t, "Ada", got.Name)
		}},
		{Name: "api/create-user", Uses: uses, Fn: func(t *harness.T) {
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			api := harness.Get[*api_client.Client](t, api_client.FixtureName)
			require.NoError(t, srv.HandleJSON(http.MethodPost, "/users", http.StatusCreated, user{ID: 7, Name: "Grace"}))

			var created user
			require.NoError(t, api.PostJSON(t.Context(), "/users", user{Name: "Grace", Email: "grace@example.test"}, &created))
			assert.Equal(t, 7, created.ID)

			reqs := srv.Requests()
			require.Len(t, reqs, 1)
			assert.JSONEq(t, `{"id":0,"name":"Grace","email":"grace@example.test"}`, string(reqs[0].Body))
		}},
		{Name: "api/html-page", Uses: uses, Fn: func(t *harness.T) {
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			api := harness.Get[*api_client.Client](t, api_client.FixtureName)
			srv.HandleHTML(http.MethodGet, "/", `<html><head><title>Shop</title></head>
<body><ul id="products"><li>Tea</li><li>Coffee</li></ul></body></html>`)

			doc, err := api.GetDocument(t.Context(), "/")
			require.NoError(t, err)
			assert.Equal(t, "Shop", doc.Find("title").Text())
			assert.Equal(t, 2, doc.Find("#products li").Length())
		}},
		{Name: "api/not-found", Uses: uses, Fn: func(t *harness.T) {
			api := harness.Get[*api_client.Client](t, api_client.FixtureName)

			var out map[string]any
			err := api.GetJSON(t.Context(), "/nothing-here", &out)
			var statusErr *api_client.StatusError
			require.True(t, errors.As(err, &statusErr), "got %v", err)
			assert.Equal(t, http.StatusNotFound, statusErr.Status)
		}},
	}
}
