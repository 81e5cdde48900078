// Package config loads the suite configuration from HCL files into a Model.
//
// The Model carries run settings, named retry policies and per-fixture
// argument blocks. It implements registry.ArgumentSource so fixture modules
// can decode their arguments into Go structs without knowing about HCL.
// Environment variables prefixed with FIXTUREGRID_ override file values.
package config
