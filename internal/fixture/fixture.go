// Package fixture defines named, lifecycle-managed test resources and the
// errors reported while registering and resolving them.
//
// A Definition is created once during suite registration and never mutated.
// The composer package turns definitions into live values: a run-scoped
// fixture is set up at most once per run and shared by every test, a
// test-scoped fixture is set up at most once per test and torn down when the
// test ends.
package fixture

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/fixturegrid/internal/retry"
)

// Scope is the lifetime boundary governing fixture sharing and teardown timing.
type Scope int

const (
	// ScopeTest fixtures are created fresh for every test and torn down at
	// the end of that test.
	ScopeTest Scope = iota
	// ScopeRun fixtures are shared by every test of a run and torn down when
	// the run ends.
	ScopeRun
)

func (s Scope) String() string {
	switch s {
	case ScopeTest:
		return "test"
	case ScopeRun:
		return "run"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Deps maps the names in a fixture's DependsOn list to their resolved values.
type Deps map[string]any

// SetupFunc creates a fixture value from its resolved dependencies.
type SetupFunc func(ctx context.Context, deps Deps) (any, error)

// TeardownFunc releases a fixture value. It receives a context that is never
// cancelled.
type TeardownFunc func(ctx context.Context, value any) error

// Definition describes how to build and release one fixture.
type Definition struct {
	Name      string
	Scope     Scope
	DependsOn []string
	Setup     SetupFunc
	// Teardown is optional.
	Teardown TeardownFunc
	// Retry, when set, re-runs a failing Setup under the given policy.
	Retry *retry.Policy
	// Description is informational only.
	Description string
}

// Validate checks the parts of a definition that do not depend on other
// registrations.
func (d *Definition) Validate() error {
	if d == nil {
		return fmt.Errorf("fixture definition is nil")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("fixture definition has an empty name")
	}
	if d.Setup == nil {
		return fmt.Errorf("fixture %q has no setup function", d.Name)
	}
	if d.Scope != ScopeRun && d.Scope != ScopeTest {
		return fmt.Errorf("fixture %q has invalid scope %s", d.Name, d.Scope)
	}
	if d.Retry != nil {
		if err := d.Retry.Validate(); err != nil {
			return fmt.Errorf("fixture %q: %w", d.Name, err)
		}
	}
	seen := make(map[string]struct{}, len(d.DependsOn))
	for _, dep := range d.DependsOn {
		if _, dup := seen[dep]; dup {
			return fmt.Errorf("fixture %q lists dependency %q more than once", d.Name, dep)
		}
		seen[dep] = struct{}{}
	}
	return nil
}

// Get returns the dependency called name as a V.
func Get[V any](deps Deps, name string) (V, error) {
	var zero V
	raw, ok := deps[name]
	if !ok {
		return zero, fmt.Errorf("dependency %q was not resolved", name)
	}
	v, ok := raw.(V)
	if !ok {
		return zero, fmt.Errorf("dependency %q has type %T, want %T", name, raw, zero)
	}
	return v, nil
}
