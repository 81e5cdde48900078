package composer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
	"github.com/vk/fixturegrid/internal/retry"
)

// ErrRegistryNotValidated is returned by New for a registry whose Validate
// has not succeeded.
var ErrRegistryNotValidated = errors.New("fixture registry has not been validated")

// ErrNoActiveRun is returned when a test scope is requested, or a run
// fixture resolved, outside BeginRun/EndRun.
var ErrNoActiveRun = errors.New("no active run")

// Composer resolves fixtures against a validated registry.
type Composer struct {
	reg *registry.Registry

	mu  sync.Mutex
	run *instance
}

// New creates a Composer. The registry must have been validated.
func New(reg *registry.Registry) (*Composer, error) {
	if reg == nil || !reg.Validated() {
		return nil, ErrRegistryNotValidated
	}
	return &Composer{reg: reg}, nil
}

// BeginRun opens the run scope.
func (c *Composer) BeginRun(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run != nil {
		return errors.New("run already active")
	}
	c.run = newInstance("run", fixture.ScopeRun)
	ctxlog.FromContext(ctx).Debug("Run scope opened.")
	return nil
}

// EndRun tears down every run fixture in reverse resolution order. The
// returned error, if any, is a *multierror.Error of *fixture.TeardownError.
func (c *Composer) EndRun(ctx context.Context) error {
	c.mu.Lock()
	run := c.run
	c.run = nil
	c.mu.Unlock()

	if run == nil {
		return ErrNoActiveRun
	}
	return teardownAll(ctx, run)
}

// BeginTest opens a test scope. A run must be active.
func (c *Composer) BeginTest(ctx context.Context, name string) (*TestScope, error) {
	if c.activeRun() == nil {
		return nil, ErrNoActiveRun
	}
	ctxlog.FromContext(ctx).Debug("Test scope opened.", "test", name)
	return &TestScope{inst: newInstance(name, fixture.ScopeTest)}, nil
}

// EndTest tears down the fixtures of ts in reverse resolution order. Calling
// it twice for the same scope is a no-op.
func (c *Composer) EndTest(ctx context.Context, ts *TestScope) error {
	if ts == nil {
		return nil
	}
	return teardownAll(ctx, ts.inst)
}

// Resolve returns the value of the named fixture, setting it and its
// dependencies up first when needed. ts may be nil when only run fixtures
// are resolved.
func (c *Composer) Resolve(ctx context.Context, ts *TestScope, name string) (any, error) {
	rf, err := c.resolve(ctx, ts, name)
	if err != nil {
		return nil, err
	}
	return rf.Value, nil
}

// Lookup returns the resolved fixture without triggering a setup.
func (c *Composer) Lookup(ts *TestScope, name string) (*ResolvedFixture, bool) {
	def, ok := c.reg.Lookup(name)
	if !ok {
		return nil, false
	}
	inst, err := c.instanceFor(def, ts)
	if err != nil {
		return nil, false
	}
	rf, ok, err := inst.lookup(name)
	if err != nil {
		return nil, false
	}
	return rf, ok
}

func (c *Composer) activeRun() *instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run
}

func (c *Composer) instanceFor(def *fixture.Definition, ts *TestScope) (*instance, error) {
	if def.Scope == fixture.ScopeRun {
		run := c.activeRun()
		if run == nil {
			return nil, ErrNoActiveRun
		}
		return run, nil
	}
	if ts == nil {
		return nil, fmt.Errorf("fixture %q is test-scoped and needs an active test", def.Name)
	}
	return ts.inst, nil
}

func (c *Composer) resolve(ctx context.Context, ts *TestScope, name string) (*ResolvedFixture, error) {
	def, ok := c.reg.Lookup(name)
	if !ok {
		return nil, &fixture.UnknownFixtureError{Name: name}
	}

	inst, err := c.instanceFor(def, ts)
	if err != nil {
		return nil, err
	}

	rf, ok, err := inst.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("fixture %q in %s scope %q: %w", name, inst.scope, inst.id, err)
	}
	if ok {
		rf.refs.Add(1)
		return rf, nil
	}

	v, err, shared := inst.inflight.Do(name, func() (any, error) {
		// A previous flight may have finished between lookup and Do.
		if rf, ok, err := inst.lookup(name); err != nil || ok {
			return rf, err
		}
		return c.setup(ctx, ts, inst, def)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		ctxlog.FromContext(ctx).Debug("Joined in-flight fixture setup.", "fixture", name)
	}

	rf = v.(*ResolvedFixture)
	rf.refs.Add(1)
	return rf, nil
}

// setup resolves the dependencies of def, runs its setup and caches the
// value. Nothing is cached when setup fails.
func (c *Composer) setup(ctx context.Context, ts *TestScope, inst *instance, def *fixture.Definition) (*ResolvedFixture, error) {
	logger := ctxlog.FromContext(ctx).With("fixture", def.Name, "scope", def.Scope.String())
	if inst.scope == fixture.ScopeTest {
		logger = logger.With("test", inst.id)
	}

	deps := make(fixture.Deps, len(def.DependsOn))
	for _, depName := range def.DependsOn {
		dep, err := c.resolve(ctx, ts, depName)
		if err != nil {
			return nil, fmt.Errorf("resolving dependency %q of fixture %q: %w", depName, def.Name, err)
		}
		deps[depName] = dep.Value
	}

	logger.Debug("▶️ Setting up fixture")
	attempt := func(ctx context.Context) (any, error) {
		return callSetup(ctx, def, deps)
	}

	var (
		value any
		err   error
	)
	if def.Retry != nil {
		logger.Debug("Fixture setup runs under retry policy.", "policy", def.Retry.String())
		value, err = retry.Do(ctx, *def.Retry, attempt)
	} else {
		value, err = attempt(ctx)
	}
	if err != nil {
		logger.Debug("Fixture setup failed.", "error", err)
		return nil, &fixture.SetupFailedError{Name: def.Name, Err: err}
	}

	rf := &ResolvedFixture{Definition: def, Value: value, Scope: def.Scope}
	if err := inst.store(rf); err != nil {
		// The scope ended while setup was running; release the value now.
		if tdErr := teardownOne(context.WithoutCancel(ctx), rf); tdErr != nil {
			logger.Warn("Teardown of orphaned fixture failed.", "error", tdErr)
		}
		return nil, fmt.Errorf("fixture %q in %s scope %q: %w", def.Name, inst.scope, inst.id, err)
	}

	logger.Info("✅ Fixture ready")
	return rf, nil
}

func callSetup(ctx context.Context, def *fixture.Definition, deps fixture.Deps) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setup panicked: %v", r)
		}
	}()
	return def.Setup(ctx, deps)
}

// teardownAll closes inst and tears down its fixtures newest first. It never
// stops early and is not cancellable.
func teardownAll(ctx context.Context, inst *instance) error {
	ctx = context.WithoutCancel(ctx)
	logger := ctxlog.FromContext(ctx).With("scope", inst.scope.String())
	if inst.scope == fixture.ScopeTest {
		logger = logger.With("test", inst.id)
	}

	fixtures := inst.close()
	var (
		merr     *multierror.Error
		failures int
	)
	for i := len(fixtures) - 1; i >= 0; i-- {
		rf := fixtures[i]
		if err := teardownOne(ctx, rf); err != nil {
			logger.Warn("Fixture teardown failed.", "fixture", rf.Definition.Name, "error", err)
			merr = multierror.Append(merr, &fixture.TeardownError{
				Name:  rf.Definition.Name,
				Scope: rf.Scope,
				Err:   err,
			})
			failures++
		}
	}
	logger.Debug("Scope closed.", "fixtures", len(fixtures), "teardown_failures", failures)
	return merr.ErrorOrNil()
}

func teardownOne(ctx context.Context, rf *ResolvedFixture) (err error) {
	if rf.Definition.Teardown == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("teardown panicked: %v", r)
		}
	}()
	ctxlog.FromContext(ctx).Info("🔥 Tearing down fixture", "fixture", rf.Definition.Name)
	return rf.Definition.Teardown(ctx, rf.Value)
}
