// Package env_vars provides the `env` run fixture: a snapshot of the process
// environment taken once per run.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

// FixtureName is the name tests use to request the snapshot.
const FixtureName = "env"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of the `fixture "env"` block.
type Input struct {
	// Prefix keeps only variables starting with it. The prefix is kept in
	// the keys.
	Prefix string `cty:"prefix"`
}

// Snapshot is the value of the `env` fixture.
type Snapshot map[string]string

// Get returns the value of key, or def when it is unset.
func (s Snapshot) Get(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

func snapshot(ctx context.Context, input *Input) Snapshot {
	envMap := make(Snapshot)
	for _, e := range os.Environ() {
		k, v, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(k, input.Prefix) {
			continue
		}
		envMap[k] = v
	}
	ctxlog.FromContext(ctx).Debug("Captured environment.", "variables", len(envMap), "prefix", input.Prefix)
	return envMap
}

// Register registers the fixture with the registry.
func (m *Module) Register(r *registry.Registry) error {
	input := &Input{}
	if err := r.DecodeArgs(FixtureName, input); err != nil {
		return err
	}
	return r.Register(fixture.Definition{
		Name:        FixtureName,
		Scope:       fixture.ScopeRun,
		Description: "snapshot of the process environment",
		Setup: func(ctx context.Context, _ fixture.Deps) (any, error) {
			return snapshot(ctx, input), nil
		},
	})
}
