// Package registry provides the central "glue" for the fixture system.
//
// A Registry is an explicit value, built once at startup by letting each
// Module register its fixture definitions, and then handed by reference to
// the composer and the harness. There is no package-level state.
//
// Validate must succeed before the registry is used. It checks that every
// declared dependency is registered, that the dependency graph is acyclic and
// that no run-scoped fixture depends on a test-scoped one. Those are
// programmer errors and are reported once, at startup, instead of surfacing
// while tests are running.
package registry
