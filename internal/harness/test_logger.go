package harness

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// TestLogger receives progress events. Implementations must be safe for use
// by concurrent workers.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, elapsed time.Duration, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                       {}
func (n nullTestLogger) TestError(TestID, error)                                  {}
func (n nullTestLogger) TestFinished(TestID, bool, time.Duration, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                               {}

var (
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
	passColor = color.New(color.FgGreen)
)

// ConsoleLogger prints test progress to Out, or stdout when Out is nil.
type ConsoleLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	mu sync.Mutex
}

func (c *ConsoleLogger) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *ConsoleLogger) TestStarted(id TestID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out(), "[%s]\n", id)
}

func (c *ConsoleLogger) TestError(id TestID, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *ConsoleLogger) TestFinished(id TestID, failed bool, elapsed time.Duration, debugOutput CapturedOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.out()
	if failed {
		failColor.Fprintf(w, "  FAILED: %s (%s)\n", id, elapsed.Round(time.Millisecond))
	} else {
		passColor.Fprintf(w, "  ok: %s (%s)\n", id, elapsed.Round(time.Millisecond))
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(w, "    DEBUG ")
	}
}

func (c *ConsoleLogger) TestSkipped(id TestID, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reason == "" {
		skipColor.Fprintf(c.out(), "  SKIPPED: %s\n", id)
	} else {
		skipColor.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
	}
}
