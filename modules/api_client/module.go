// Package api_client provides the `api` test fixture: a JSON/HTML client
// bound to the system under test, or to the test's mock server when no base
// URL is configured.
package api_client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
	"github.com/vk/fixturegrid/internal/retry"
	"github.com/vk/fixturegrid/modules/http_client"
	"github.com/vk/fixturegrid/modules/mock_server"
)

// FixtureName is the name tests use to request the client.
const FixtureName = "api"

// Input defines the arguments of the `fixture "api"` block.
type Input struct {
	BaseURL       string        `cty:"base_url"`
	RetryAttempts int           `cty:"retry_attempts"`
	RetryInterval time.Duration `cty:"retry_interval"`
}

// Module registers the api fixture. BaseURL is the run-wide default, usually
// settings.base_url; the fixture argument takes precedence.
type Module struct {
	BaseURL string
}

// Register decodes the fixture arguments and registers the fixture.
func (m *Module) Register(r *registry.Registry) error {
	input := &Input{BaseURL: m.BaseURL, RetryAttempts: 1}
	if err := r.DecodeArgs(FixtureName, input); err != nil {
		return err
	}
	policy := retry.Policy{MaxAttempts: input.RetryAttempts, Interval: input.RetryInterval}
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("fixture %q: %w", FixtureName, err)
	}

	return r.Register(fixture.Definition{
		Name:        FixtureName,
		Scope:       fixture.ScopeTest,
		DependsOn:   []string{http_client.FixtureName, mock_server.FixtureName},
		Description: "JSON and HTML client for the system under test",
		Setup: func(ctx context.Context, deps fixture.Deps) (any, error) {
			hc, err := fixture.Get[*http.Client](deps, http_client.FixtureName)
			if err != nil {
				return nil, err
			}
			base := input.BaseURL
			if base == "" {
				srv, err := fixture.Get[*mock_server.Server](deps, mock_server.FixtureName)
				if err != nil {
					return nil, err
				}
				base = srv.URL()
			}
			ctxlog.FromContext(ctx).Debug("API client ready.", "base_url", base, "retry", policy.String())
			return NewClient(hc, base, policy), nil
		},
	})
}
