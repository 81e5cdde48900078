// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/config"
	"github.com/vk/fixturegrid/internal/env"
	"github.com/vk/fixturegrid/internal/registry"
)

// LogsEnvVar, when "true", makes DumpLogs print captured logs.
const LogsEnvVar = env.Prefix + "TEST_LOGS"

// DumpLogs prints buf when the test finishes and LogsEnvVar is set.
func DumpLogs(t *testing.T, buf *SafeBuffer) {
	t.Helper()
	t.Cleanup(func() {
		if os.Getenv(LogsEnvVar) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
}

// WriteConfig writes an HCL document into a fresh temp dir and returns its
// path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// NewRegistry registers mods, with arguments from the HCL document src when
// it is not empty, and validates the result.
func NewRegistry(t *testing.T, src string, mods ...registry.Module) *registry.Registry {
	t.Helper()
	reg := registry.New()
	if src != "" {
		model, err := config.Parse("suite.hcl", []byte(src))
		require.NoError(t, err)
		reg.SetArguments(model)
	}
	require.NoError(t, reg.RegisterModules(mods...))
	require.NoError(t, reg.Validate(context.Background()))
	return reg
}
