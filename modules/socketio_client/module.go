// Package socketio_client provides the `socketio_client` test fixture: a
// Socket.IO connection opened for a test and closed when it ends. A retry
// policy configured for the fixture covers flaky connection attempts.
package socketio_client

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

// FixtureName is the name tests use to request the client.
const FixtureName = "socketio_client"

// Module implements the registry.Module interface for this package. URL
// and Namespace are defaults, usually from the socketio block.
type Module struct {
	URL       string
	Namespace string
}

// Register decodes the fixture arguments and registers the fixture.
func (m *Module) Register(r *registry.Registry) error {
	input := &Input{
		URL:            m.URL,
		Namespace:      m.Namespace,
		ConnectTimeout: 15 * time.Second,
	}
	if input.Namespace == "" {
		input.Namespace = "/"
	}
	if err := r.DecodeArgs(FixtureName, input); err != nil {
		return err
	}
	if input.ConnectTimeout <= 0 {
		return fmt.Errorf("fixture %q: connect_timeout must be positive", FixtureName)
	}

	return r.Register(fixture.Definition{
		Name:        FixtureName,
		Scope:       fixture.ScopeTest,
		Description: "Socket.IO connection",
		Setup: func(ctx context.Context, _ fixture.Deps) (any, error) {
			return Connect(ctx, input)
		},
		Teardown: func(ctx context.Context, v any) error {
			c, ok := v.(*Client)
			if !ok {
				return fmt.Errorf("unexpected %s value %T", FixtureName, v)
			}
			ctxlog.FromContext(ctx).Info("Disconnecting socket.io client", "sid", c.ID())
			c.Close()
			return nil
		},
	})
}
