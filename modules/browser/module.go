// Package browser provides the `browser` run fixture, a Chromium instance
// driven by playwright, and the `page` test fixture opened in an isolated
// browser context.
package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

// Fixture names.
const (
	BrowserFixture = "browser"
	PageFixture    = "page"
)

// Module registers the browser fixtures. Nothing is registered unless
// Enabled is set, so suites without a browser never need the driver.
type Module struct {
	Enabled  bool
	Headless bool
}

// Register decodes the fixture arguments and registers both fixtures.
func (m *Module) Register(r *registry.Registry) error {
	if !m.Enabled {
		return nil
	}
	input := &Input{}
	if err := r.DecodeArgs(BrowserFixture, input); err != nil {
		return err
	}

	err := r.Register(fixture.Definition{
		Name:        BrowserFixture,
		Scope:       fixture.ScopeRun,
		Description: "Chromium driven by playwright",
		Setup: func(ctx context.Context, _ fixture.Deps) (any, error) {
			return Launch(ctx, input, m.Headless)
		},
		Teardown: func(ctx context.Context, v any) error {
			b, ok := v.(*Browser)
			if !ok {
				return fmt.Errorf("unexpected %s value %T", BrowserFixture, v)
			}
			ctxlog.FromContext(ctx).Info("Closing browser")
			return b.Close()
		},
	})
	if err != nil {
		return err
	}

	return r.Register(fixture.Definition{
		Name:        PageFixture,
		Scope:       fixture.ScopeTest,
		DependsOn:   []string{BrowserFixture},
		Description: "page in an isolated browser context",
		Setup: func(_ context.Context, deps fixture.Deps) (any, error) {
			b, err := fixture.Get[*Browser](deps, BrowserFixture)
			if err != nil {
				return nil, err
			}
			return b.NewPage()
		},
		Teardown: func(_ context.Context, v any) error {
			page, ok := v.(playwright.Page)
			if !ok {
				return fmt.Errorf("unexpected %s value %T", PageFixture, v)
			}
			return page.Context().Close()
		},
	})
}
