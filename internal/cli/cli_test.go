package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fixturegrid/internal/harness"
)

func TestParse(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		// Arrange
		args := []string{
			"-c", "suite.hcl",
			"-run", "^api/", "-run", "^mocking/",
			"-skip", "flaky",
			"-workers", "4",
			"-log-level", "DEBUG",
			"-log-format", "json",
			"-report", "yaml",
			"extra.hcl",
		}

		// Act
		cfg, exit, err := Parse(args, &bytes.Buffer{})

		// Assert
		require.NoError(t, err)
		assert.False(t, exit)
		assert.Equal(t, []string{"suite.hcl", "extra.hcl"}, cfg.ConfigPaths)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, harness.ReportYAML, cfg.Report)
		assert.True(t, cfg.Run.AnyMatch("mocking/records-requests"))
		assert.True(t, cfg.Skip.AnyMatch("flaky/retrier-recovers"))
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, exit, err := Parse(nil, &bytes.Buffer{})
		require.NoError(t, err)
		assert.False(t, exit)
		assert.Empty(t, cfg.ConfigPaths)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.False(t, cfg.Run.IsDefined())
	})

	t.Run("help", func(t *testing.T) {
		out := &bytes.Buffer{}
		_, exit, err := Parse([]string{"-h"}, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid values exit with 2", func(t *testing.T) {
		for _, args := range [][]string{
			{"-log-format", "xml"},
			{"-log-level", "loud"},
			{"-report", "html"},
			{"-run", "("},
			{"-no-such-flag"},
		} {
			_, _, err := Parse(args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr, "args %v", args)
			assert.Equal(t, ExitUsage, exitErr.Code)
		}
	})
}

func TestFromRunError(t *testing.T) {
	assert.NoError(t, FromRunError(nil))

	var exitErr *ExitError
	failed := fmt.Errorf("run: %w", &harness.FailedError{Failed: []harness.TestID{harness.ParseTestID("a")}, Total: 1})
	require.ErrorAs(t, FromRunError(failed), &exitErr)
	assert.Equal(t, ExitTestsFailed, exitErr.Code)

	require.ErrorAs(t, FromRunError(errors.New("port in use")), &exitErr)
	assert.Equal(t, ExitUsage, exitErr.Code)
}
