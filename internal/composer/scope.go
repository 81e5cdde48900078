package composer

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vk/fixturegrid/internal/fixture"
	"golang.org/x/sync/singleflight"
)

// errScopeEnded is returned when a fixture is requested from a scope that has
// already been torn down.
var errScopeEnded = errors.New("scope has already ended")

// ResolvedFixture is a live fixture value bound to one scope instance.
type ResolvedFixture struct {
	Definition *fixture.Definition
	Value      any
	Scope      fixture.Scope

	refs atomic.Int64
}

// RefCount is the number of times the value has been handed out, including
// to dependent fixtures.
func (r *ResolvedFixture) RefCount() int64 {
	return r.refs.Load()
}

// instance is one activation of a scope: the run, or a single test.
type instance struct {
	id    string
	scope fixture.Scope

	mu       sync.Mutex
	resolved map[string]*ResolvedFixture
	order    []*ResolvedFixture
	closed   bool

	inflight singleflight.Group
}

func newInstance(id string, scope fixture.Scope) *instance {
	return &instance{
		id:       id,
		scope:    scope,
		resolved: make(map[string]*ResolvedFixture),
	}
}

func (i *instance) lookup(name string) (*ResolvedFixture, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil, false, errScopeEnded
	}
	rf, ok := i.resolved[name]
	return rf, ok, nil
}

// store caches rf and records it for teardown. It fails when the instance
// was closed while the setup was running; the caller owns rf in that case.
func (i *instance) store(rf *ResolvedFixture) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return errScopeEnded
	}
	i.resolved[rf.Definition.Name] = rf
	i.order = append(i.order, rf)
	return nil
}

// close marks the instance ended and returns its fixtures in resolution
// order. A second call returns nil.
func (i *instance) close() []*ResolvedFixture {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	order := i.order
	i.order = nil
	i.resolved = nil
	return order
}

func (i *instance) names() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	names := make([]string, 0, len(i.order))
	for _, rf := range i.order {
		names = append(names, rf.Definition.Name)
	}
	return slices.Clip(names)
}

// TestScope is the handle for one active test. It is returned by BeginTest
// and must be passed to Resolve and EndTest.
type TestScope struct {
	inst *instance
}

// Name returns the test name the scope was opened with.
func (t *TestScope) Name() string {
	return t.inst.id
}

// Resolved returns the names of the test fixtures resolved so far, in
// resolution order.
func (t *TestScope) Resolved() []string {
	return t.inst.names()
}
