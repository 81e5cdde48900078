package harness

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/vk/fixturegrid/internal/composer"
)

// T is passed to a test function. It gives access to fixtures and records
// failures.
type T struct {
	id       TestID
	ctx      context.Context
	composer *composer.Composer
	scope    *composer.TestScope
	logger   TestLogger

	debugLogger CapturingLogger

	mu         sync.Mutex
	failed     bool
	skipped    bool
	skipReason string
	errors     []error
}

// run calls action and turns a FailNow, Skip or unexpected panic into the
// matching result.
func (t *T) run(action func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			t.mu.Lock()
			defer t.mu.Unlock()
			if t.skipped {
				return
			}
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.errors = append(t.errors, addError)
				t.logger.TestError(t.id, addError)
			}
		}
	}()

	action(t)
}

func (t *T) ID() TestID {
	return t.id
}

func (t *T) Name() string {
	return t.id.String()
}

// Context is cancelled when the test times out or the run is interrupted.
func (t *T) Context() context.Context {
	return t.ctx
}

// Fixture resolves the named fixture in this test's scope.
func (t *T) Fixture(name string) (any, error) {
	v, err := t.composer.Resolve(t.ctx, t.scope, name)
	if err != nil {
		return nil, err
	}
	t.Debug("resolved fixture %q", name)
	return v, nil
}

// MustFixture is like Fixture but fails the test on error.
func (t *T) MustFixture(name string) any {
	v, err := t.Fixture(name)
	if err != nil {
		t.Fatalf("fixture %q: %v", name, err)
	}
	return v
}

// Get resolves the named fixture as a V, failing the test when it cannot be
// resolved or has another type.
func Get[V any](t *T, name string) V {
	raw := t.MustFixture(name)
	v, ok := raw.(V)
	if !ok {
		var zero V
		t.Fatalf("fixture %q has type %T, want %T", name, raw, zero)
	}
	return v
}

func (t *T) Errorf(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	t.mu.Lock()
	t.failed = true
	t.errors = append(t.errors, err)
	t.mu.Unlock()
	t.logger.TestError(t.id, err)
}

func (t *T) Fatalf(format string, args ...any) {
	t.Errorf(format, args...)
	t.FailNow()
}

func (t *T) FailNow() {
	panic(t)
}

func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

func (t *T) Skip(reason string) {
	t.mu.Lock()
	t.skipped = true
	t.skipReason = reason
	t.mu.Unlock()
	panic(t)
}

func (t *T) Skipf(format string, args ...any) {
	t.Skip(fmt.Sprintf(format, args...))
}

// Debug records a message that is only shown according to the console
// logger's debug settings.
func (t *T) Debug(message string, args ...any) {
	t.debugLogger.Printf(message, args...)
}

// Logf is an alias of Debug matching the testing.T naming.
func (t *T) Logf(format string, args ...any) {
	t.Debug(format, args...)
}

// Helper exists so T satisfies the subset of testing.TB used by assertion
// libraries.
func (t *T) Helper() {}
