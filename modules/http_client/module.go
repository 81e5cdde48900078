// Package http_client provides the `http_client` run fixture: a pooled
// *http.Client shared by every test of a run.
package http_client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

// FixtureName is the name tests use to request the client.
const FixtureName = "http_client"

// Module implements the registry.Module interface. It's the main entrypoint
// for the http_client module.
type Module struct{}

// Register decodes the fixture arguments and registers the fixture.
func (m *Module) Register(r *registry.Registry) error {
	input := defaultInput()
	if err := r.DecodeArgs(FixtureName, input); err != nil {
		return err
	}
	if input.Timeout < 0 {
		return fmt.Errorf("fixture %q: timeout must not be negative", FixtureName)
	}

	return r.Register(fixture.Definition{
		Name:        FixtureName,
		Scope:       fixture.ScopeRun,
		Description: "pooled HTTP client",
		Setup: func(ctx context.Context, _ fixture.Deps) (any, error) {
			return createHttpClient(ctx, input)
		},
		Teardown: func(_ context.Context, v any) error {
			client, ok := v.(*http.Client)
			if !ok {
				return fmt.Errorf("unexpected %s value %T", FixtureName, v)
			}
			return destroyHttpClient(client)
		},
	})
}
