// Package mock_server provides the `mock_server` test fixture: a local HTTP
// server, fresh for every test, whose routes the test declares.
package mock_server

import (
	"context"
	"fmt"

	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

// FixtureName is the name tests use to request the server.
const FixtureName = "mock_server"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the fixture with the registry.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(fixture.Definition{
		Name:        FixtureName,
		Scope:       fixture.ScopeTest,
		Description: "per-test HTTP server with an ordered route table",
		Setup: func(ctx context.Context, _ fixture.Deps) (any, error) {
			s := New()
			ctxlog.FromContext(ctx).Debug("Mock server started.", "url", s.URL())
			return s, nil
		},
		Teardown: func(ctx context.Context, v any) error {
			s, ok := v.(*Server)
			if !ok {
				return fmt.Errorf("unexpected %s value %T", FixtureName, v)
			}
			ctxlog.FromContext(ctx).Debug("Mock server stopped.", "url", s.URL(), "requests", len(s.Requests()))
			s.Close()
			return nil
		},
	})
}
