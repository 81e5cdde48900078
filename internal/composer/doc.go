// Package composer turns validated fixture definitions into live values and
// manages their lifetimes.
//
// A Composer owns one run scope at a time and any number of test scopes
// opened with BeginTest. Resolve walks a fixture's dependencies depth-first
// in declaration order, sets each one up at most once per scope instance and
// caches the value. Concurrent resolves of the same fixture in the same scope
// instance share a single in-flight setup.
//
// Ending a scope tears its fixtures down in exact reverse resolution order.
// Every teardown runs even when an earlier one fails or panics; failures are
// returned together once all of them have run.
package composer
