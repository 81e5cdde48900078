package suites

import "github.com/vk/fixturegrid/internal/harness"

// Options switches on the tests that need something outside the process.
type Options struct {
	// SocketIOURL enables the realtime tests when set.
	SocketIOURL string
	// SocketIOEvent is the event the server is expected to echo.
	SocketIOEvent string
	// Browser enables the browser tests.
	Browser bool
}

// All returns every example suite, in a stable order.
func All(opts Options) harness.Suite {
	return harness.Merge(
		API(),
		Mocking(),
		Flaky(),
		Environment(),
		Realtime(opts),
		Browser(opts),
	)
}
