package http_client

import (
	"context"
	"net/http"
	"time"

	"github.com/vk/fixturegrid/internal/ctxlog"
)

// Input defines the arguments of the `fixture "http_client"` block.
type Input struct {
	Timeout             time.Duration `cty:"timeout"`
	MaxIdleConns        int           `cty:"max_idle_conns"`
	MaxIdleConnsPerHost int           `cty:"max_idle_conns_per_host"`
}

func defaultInput() *Input {
	return &Input{
		Timeout:             10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}
}

// createHttpClient returns a live *http.Client that is shared by every test
// of the run.
func createHttpClient(ctx context.Context, input *Input) (*http.Client, error) {
	ctxlog.FromContext(ctx).Debug("Creating shared HTTP client.", "timeout", input.Timeout)
	client := &http.Client{
		Timeout: input.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        input.MaxIdleConns,
			MaxIdleConnsPerHost: input.MaxIdleConnsPerHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return client, nil
}

// destroyHttpClient gracefully closes any idle connections.
func destroyHttpClient(client *http.Client) error {
	client.CloseIdleConnections()
	return nil
}
