package registry

import (
	"context"
	"errors"

	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/dag"
	"github.com/vk/fixturegrid/internal/fixture"
)

// Validate checks the registered definitions as a whole. Checks run in this
// order and the first failing one is returned:
//
//   - every dependency is registered (*fixture.UnknownFixtureError)
//   - the dependency graph is acyclic (*fixture.CyclicDependencyError)
//   - no run fixture depends on a test fixture (*fixture.InvalidScopeNestingError)
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.names {
		for _, dep := range r.defs[name].DependsOn {
			if _, ok := r.defs[dep]; !ok {
				return &fixture.UnknownFixtureError{Name: dep, Referrer: name}
			}
		}
	}

	order, err := r.sortLocked()
	if err != nil {
		return err
	}

	for _, name := range r.names {
		def := r.defs[name]
		if def.Scope != fixture.ScopeRun {
			continue
		}
		for _, dep := range def.DependsOn {
			if r.defs[dep].Scope == fixture.ScopeTest {
				return &fixture.InvalidScopeNestingError{Fixture: name, Dependency: dep}
			}
		}
	}

	r.order = order
	r.validated = true
	logger.Debug("Fixture registry validated.", "fixtures", len(r.names), "order", order)
	return nil
}

// sortLocked builds the dependency graph and sorts it topologically.
func (r *Registry) sortLocked() ([]string, error) {
	g := dag.New()
	for _, name := range r.names {
		g.AddNode(name)
	}
	for _, name := range r.names {
		for _, dep := range r.defs[name].DependsOn {
			if dep == name {
				return nil, &fixture.CyclicDependencyError{Cycle: []string{name, name}}
			}
			if err := g.AddEdge(dep, name); err != nil {
				return nil, err
			}
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			return nil, &fixture.CyclicDependencyError{Cycle: cycleErr.Path}
		}
		return nil, err
	}
	return order, nil
}
