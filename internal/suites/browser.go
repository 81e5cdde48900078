package suites

import (
	"net/http"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/harness"
	"github.com/vk/fixturegrid/modules/browser"
	"github.com/vk/fixturegrid/modules/mock_server"
)

// Browser renders a page served by the mock server.
func Browser(opts Options) harness.Suite {
	return harness.Suite{
		{Name: "browser/smoke", Uses: []string{mock_server.FixtureName}, Fn: func(t *harness.T) {
			if !opts.Browser {
				t.Skip("browser disabled")
			}
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			page := harness.Get[playwright.Page](t, browser.PageFixture)
			srv.HandleHTML(http.MethodGet, "/", `<html><body><h1 id="greeting">Hello from fixturegrid</h1></body></html>`)

			_, err := page.Goto(srv.URL() + "/")
			require.NoError(t, err)
			text, err := page.Locator("#greeting").TextContent()
			require.NoError(t, err)
			assert.Equal(t, "Hello from fixturegrid", text)
		}},
	}
}
