// Package app contains the core application logic. It wires configuration,
// fixture modules and suites together and drives a run, decoupled from any
// specific entrypoint like a CLI.
package app
