package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/retry"
)

// Module is the interface that all fixture modules must implement to be
// registered.
type Module interface {
	Register(r *Registry) error
}

// ArgumentSource supplies per-fixture configuration, usually the loaded
// suite configuration file.
type ArgumentSource interface {
	// DecodeFixtureArgs decodes the arguments configured for the named
	// fixture into target. It is a no-op when nothing is configured.
	DecodeFixtureArgs(name string, target any) error
	// FixtureRetry returns the retry policy configured for the named
	// fixture, or nil.
	FixtureRetry(name string) (*retry.Policy, error)
}

// Registry holds every registered fixture definition for a single
// application instance.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*fixture.Definition
	names []string
	args  ArgumentSource

	validated bool
	order     []string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		defs: make(map[string]*fixture.Definition),
	}
}

// SetArguments attaches the configuration consulted by DecodeArgs and by
// Register for retry policies. It must be called before modules register.
func (r *Registry) SetArguments(src ArgumentSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = src
}

// Register adds a fixture definition. Names must be unique. A definition
// without its own retry policy picks up the one configured for its name.
func (r *Registry) Register(def fixture.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("fixture %q already registered", def.Name)
	}

	if def.Retry == nil && r.args != nil {
		p, err := r.args.FixtureRetry(def.Name)
		if err != nil {
			return fmt.Errorf("fixture %q: %w", def.Name, err)
		}
		def.Retry = p
	}

	def.DependsOn = slices.Clone(def.DependsOn)
	slog.Debug("Registering fixture.", "name", def.Name, "scope", def.Scope, "depends_on", def.DependsOn)
	r.defs[def.Name] = &def
	r.names = append(r.names, def.Name)
	r.validated = false
	r.order = nil
	return nil
}

// RegisterModules lets each module register its fixtures, stopping at the
// first failure.
func (r *Registry) RegisterModules(mods ...Module) error {
	for _, m := range mods {
		if err := m.Register(r); err != nil {
			return fmt.Errorf("registering module %T: %w", m, err)
		}
	}
	return nil
}

// DecodeArgs decodes the configured arguments of the named fixture into
// target. Without an ArgumentSource target is left untouched.
func (r *Registry) DecodeArgs(name string, target any) error {
	r.mu.RLock()
	src := r.args
	r.mu.RUnlock()

	if src == nil {
		return nil
	}
	return src.DecodeFixtureArgs(name, target)
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*fixture.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered fixture names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

// Len returns the number of registered fixtures.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Validated reports whether Validate succeeded since the last registration.
func (r *Registry) Validated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.validated
}

// Order returns the fixture names sorted so that every fixture comes after
// its dependencies. It is only populated after a successful Validate.
func (r *Registry) Order() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}
