package suites

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/harness"
	"github.com/vk/fixturegrid/internal/retry"
	"github.com/vk/fixturegrid/modules/http_client"
	"github.com/vk/fixturegrid/modules/mock_server"
)

// Flaky drives the retrier against an endpoint that fails before it works.
func Flaky() harness.Suite {
	uses := []string{http_client.FixtureName, mock_server.FixtureName}
	return harness.Suite{
		{Name: "flaky/retrier-recovers", Uses: uses, Fn: func(t *harness.T) {
			hc := harness.Get[*http.Client](t, http_client.FixtureName)
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			srv.HandleSequence(http.MethodGet, "/health",
				httphelpers.HandlerWithStatus(http.StatusServiceUnavailable),
				httphelpers.HandlerWithStatus(http.StatusServiceUnavailable),
				httphelpers.HandlerWithStatus(http.StatusOK))

			policy := retry.Policy{MaxAttempts: 5, Interval: 10 * time.Millisecond}
			status, err := retry.Do(t.Context(), policy, healthStatus(hc, srv.URL()+"/health"))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, 3, srv.Count(http.MethodGet, "/health"))
		}},
		{Name: "flaky/retrier-gives-up", Uses: uses, Fn: func(t *harness.T) {
			hc := harness.Get[*http.Client](t, http_client.FixtureName)
			srv := harness.Get[*mock_server.Server](t, mock_server.FixtureName)
			srv.HandleStatus(http.MethodGet, "/health", http.StatusServiceUnavailable)

			policy := retry.Policy{MaxAttempts: 3, Interval: 5 * time.Millisecond}
			_, err := retry.Do(t.Context(), policy, healthStatus(hc, srv.URL()+"/health"))

			var failed *retry.ActionFailedError
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, 3, failed.Attempts)
			assert.ErrorContains(t, failed.Last(), "status 503")
		}},
	}
}

func healthStatus(hc *http.Client, url string) retry.Action[int] {
	return func(ctx context.Context) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return 0, err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp.StatusCode, nil
	}
}
