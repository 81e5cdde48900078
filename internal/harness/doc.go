// Package harness runs suites of tests against a fixture composer.
//
// Each Test names the fixtures it uses and a function receiving a *T. The
// runner opens the run scope once, hands tests to a pool of workers, gives
// every test its own test scope and timeout, and closes the run scope when
// all tests are done. FailNow and Skip stop a test by panicking with its *T,
// which the runner recovers.
//
// Registration problems are reported by Validate before anything runs.
// Fixture teardown failures never fail a test; they are collected as
// warnings on the Results.
package harness
