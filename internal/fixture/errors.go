package fixture

import (
	"fmt"
	"strings"
)

// UnknownFixtureError reports a reference to a fixture name that was never
// registered.
type UnknownFixtureError struct {
	Name string
	// Referrer is the fixture or test that referenced Name, if known.
	Referrer string
}

func (e *UnknownFixtureError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("unknown fixture %q referenced by %q", e.Name, e.Referrer)
	}
	return fmt.Sprintf("unknown fixture %q", e.Name)
}

// CyclicDependencyError reports a dependency cycle found while validating
// registrations. Cycle repeats its first name at the end.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic fixture dependency: %s", strings.Join(e.Cycle, " -> "))
}

// InvalidScopeNestingError reports a run-scoped fixture that depends on a
// test-scoped one.
type InvalidScopeNestingError struct {
	Fixture    string
	Dependency string
}

func (e *InvalidScopeNestingError) Error() string {
	return fmt.Sprintf("run-scoped fixture %q cannot depend on test-scoped fixture %q", e.Fixture, e.Dependency)
}

// SetupFailedError reports that a fixture's setup returned an error.
type SetupFailedError struct {
	Name string
	Err  error
}

func (e *SetupFailedError) Error() string {
	return fmt.Sprintf("setup of fixture %q failed: %v", e.Name, e.Err)
}

func (e *SetupFailedError) Unwrap() error {
	return e.Err
}

// TeardownError reports that a fixture's teardown failed. Teardown errors are
// collected per scope and never stop sibling teardowns.
type TeardownError struct {
	Name  string
	Scope Scope
	Err   error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("teardown of %s fixture %q failed: %v", e.Scope, e.Name, e.Err)
}

func (e *TeardownError) Unwrap() error {
	return e.Err
}
