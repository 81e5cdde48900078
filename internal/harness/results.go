package harness

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TestID struct {
	Path []string
}

// ParseTestID splits a slash-separated test name.
func ParseTestID(name string) TestID {
	return TestID{Path: strings.Split(name, "/")}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	// Fixtures lists the test-scoped fixtures the test resolved, in order.
	Fixtures []string
}

func (r TestResult) Failed() bool {
	return len(r.Errors) != 0
}

// TeardownWarning is a fixture teardown failure. It never fails a test.
type TeardownWarning struct {
	Fixture string
	Scope   string
	// Test is empty for run-scoped fixtures.
	Test string
	Err  error
}

func (w TeardownWarning) String() string {
	if w.Test == "" {
		return fmt.Sprintf("%s fixture %q: %v", w.Scope, w.Fixture, w.Err)
	}
	return fmt.Sprintf("%s fixture %q in [%s]: %v", w.Scope, w.Fixture, w.Test, w.Err)
}

type Results struct {
	RunID            uuid.UUID
	Started          time.Time
	Duration         time.Duration
	Tests            []TestResult
	Failures         []TestResult
	Skipped          []TestResult
	TeardownWarnings []TeardownWarning
}

func (r *Results) OK() bool {
	return len(r.Failures) == 0
}

// Passed counts tests that ran and did not fail.
func (r *Results) Passed() int {
	return len(r.Tests) - len(r.Failures) - len(r.Skipped)
}

// Err returns a *FailedError when any test failed.
func (r *Results) Err() error {
	if r.OK() {
		return nil
	}
	ids := make([]TestID, 0, len(r.Failures))
	for _, f := range r.Failures {
		ids = append(ids, f.TestID)
	}
	return &FailedError{Failed: ids, Total: len(r.Tests)}
}

// FailedError reports which tests of a run failed.
type FailedError struct {
	Failed []TestID
	Total  int
}

func (e *FailedError) Error() string {
	names := make([]string, len(e.Failed))
	for i, id := range e.Failed {
		names[i] = id.String()
	}
	return fmt.Sprintf("%d of %d tests failed: %s", len(e.Failed), e.Total, strings.Join(names, ", "))
}
