// Package suites holds the example tests shipped with fixturegrid. They run
// against local mock servers out of the box; the realtime and browser tests
// skip themselves unless a Socket.IO server or a browser is configured.
package suites
