package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/registry"
	"github.com/vk/fixturegrid/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Logs are
// captured at debug level and dumped when FIXTUREGRID_TEST_LOGS is true.
func SetupAppTest(t *testing.T, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	testutil.DumpLogs(t, logBuffer)

	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	testApp, err := New(logBuffer, appConfig, modules...)
	require.NoError(t, err)
	return testApp, logBuffer
}
