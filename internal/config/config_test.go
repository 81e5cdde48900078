package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHCL = `
settings {
  base_url     = "http://localhost:8080"
  test_timeout = "5s"
  workers      = 4
}

retry "network" {
  max_attempts = 3
  interval     = "250ms"
}

fixture "http_client" {
  timeout = "2s"
}

fixture "socketio_client" {
  retry = "network"
  url   = "http://localhost:3000"
  tags  = ["a", "b"]
}

browser {
  enabled  = true
  headless = false
}

socketio {
  url = "http://localhost:3000"
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		path := writeFile(t, dir, "suite.hcl", sampleHCL)

		// Act
		m, err := Load(context.Background(), path)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{path}, m.Files)
		assert.Equal(t, "http://localhost:8080", m.Settings.BaseURL)
		assert.Equal(t, 5*time.Second, m.Settings.TestTimeout)
		assert.Equal(t, 4, m.Settings.Workers)
		assert.Equal(t, 3, m.Retries["network"].MaxAttempts)
		assert.Equal(t, 250*time.Millisecond, m.Retries["network"].Interval)
		assert.True(t, m.Browser.Enabled)
		assert.False(t, m.Browser.Headless)
		assert.Equal(t, "http://localhost:3000", m.SocketIO.URL)
		assert.Equal(t, "/", m.SocketIO.Namespace, "unset values keep their default")
		require.Contains(t, m.Fixtures, "socketio_client")
		assert.Equal(t, "network", m.Fixtures["socketio_client"].Retry)
	})

	t.Run("missing path falls back to defaults", func(t *testing.T) {
		m, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
		require.NoError(t, err)
		assert.Equal(t, Default(), m)
	})

	t.Run("directories are walked", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", `retry "fast" { max_attempts = 2 }`)
		writeFile(t, dir, "b.hcl", `fixture "db" { retry = "fast" }`)
		writeFile(t, dir, "ignored.txt", `not hcl`)

		m, err := Load(context.Background(), dir)
		require.NoError(t, err)
		assert.Len(t, m.Files, 2)
		assert.Equal(t, time.Duration(0), m.Retries["fast"].Interval, "zero interval is valid")
	})

	t.Run("errors", func(t *testing.T) {
		cases := map[string]struct {
			src  string
			want string
		}{
			"syntax":            {`settings {`, "failed to parse HCL file"},
			"bad duration":      {`settings { test_timeout = "soon" }`, "settings.test_timeout"},
			"invalid policy":    {`retry "r" { max_attempts = 0 }`, "invalid retry policy"},
			"negative interval": {"retry \"r\" {\n  max_attempts = 1\n  interval = \"-1s\"\n}", "invalid retry policy"},
			"duplicate retry":   {"retry \"r\" { max_attempts = 1 }\nretry \"r\" { max_attempts = 2 }", "defined more than once"},
			"dangling retry":    {`fixture "db" { retry = "missing" }`, `undefined retry policy "missing"`},
			"zero workers":      {`settings { workers = 0 }`, "workers must be at least 1"},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				path := writeFile(t, t.TempDir(), "bad.hcl", tc.src)
				_, err := Load(context.Background(), path)
				assert.ErrorContains(t, err, tc.want)
			})
		}
	})
}

func TestParse_EnvAndFunctions(t *testing.T) {
	t.Setenv("FIXTUREGRID_TEST_HOST", "example.test")

	m, err := Parse("inline.hcl", []byte(`
fixture "api" {
  base = format("https://%s", env.FIXTUREGRID_TEST_HOST)
  name = upper("api")
}
`))
	require.NoError(t, err)

	var args struct {
		Base string `cty:"base"`
		Name string `cty:"name"`
	}
	require.NoError(t, m.DecodeFixtureArgs("api", &args))
	assert.Equal(t, "https://example.test", args.Base)
	assert.Equal(t, "API", args.Name)
}

func TestDecodeFixtureArgs(t *testing.T) {
	m, err := Parse("suite.hcl", []byte(sampleHCL))
	require.NoError(t, err)

	t.Run("typed fields and defaults", func(t *testing.T) {
		args := struct {
			URL     string        `cty:"url"`
			Tags    []string      `cty:"tags"`
			Timeout time.Duration `cty:"timeout"`
		}{Timeout: time.Second}

		require.NoError(t, m.DecodeFixtureArgs("socketio_client", &args))
		assert.Equal(t, "http://localhost:3000", args.URL)
		assert.Equal(t, []string{"a", "b"}, args.Tags)
		assert.Equal(t, time.Second, args.Timeout, "unconfigured fields keep their default")
	})

	t.Run("durations", func(t *testing.T) {
		var args struct {
			Timeout time.Duration `cty:"timeout"`
		}
		require.NoError(t, m.DecodeFixtureArgs("http_client", &args))
		assert.Equal(t, 2*time.Second, args.Timeout)
	})

	t.Run("unconfigured fixture is a no-op", func(t *testing.T) {
		var args struct {
			X int `cty:"x"`
		}
		require.NoError(t, m.DecodeFixtureArgs("page", &args))
		assert.Zero(t, args.X)
	})

	t.Run("unsupported argument", func(t *testing.T) {
		var args struct {
			URL string `cty:"url"`
		}
		err := m.DecodeFixtureArgs("socketio_client", &args)
		assert.ErrorContains(t, err, `unsupported argument "tags"`)
	})

	t.Run("type mismatch", func(t *testing.T) {
		var args struct {
			Timeout bool `cty:"timeout"`
		}
		err := m.DecodeFixtureArgs("http_client", &args)
		assert.ErrorContains(t, err, "failed to decode argument 'timeout'")
	})

	t.Run("non-pointer target", func(t *testing.T) {
		err := m.DecodeFixtureArgs("http_client", struct{}{})
		assert.ErrorContains(t, err, "non-nil pointer to a struct")
	})
}

func TestFixtureRetry(t *testing.T) {
	m, err := Parse("suite.hcl", []byte(sampleHCL))
	require.NoError(t, err)

	p, err := m.FixtureRetry("socketio_client")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 3, p.MaxAttempts)

	p, err = m.FixtureRetry("http_client")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestApplyEnv(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		t.Setenv("FIXTUREGRID_BASE_URL", "http://override")
		t.Setenv("FIXTUREGRID_WORKERS", "8")
		t.Setenv("FIXTUREGRID_TEST_TIMEOUT", "1m")
		t.Setenv("FIXTUREGRID_HEADLESS", "false")

		m := Default()
		require.NoError(t, m.ApplyEnv())
		assert.Equal(t, "http://override", m.Settings.BaseURL)
		assert.Equal(t, 8, m.Settings.Workers)
		assert.Equal(t, time.Minute, m.Settings.TestTimeout)
		assert.False(t, m.Browser.Headless)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("FIXTUREGRID_WORKERS", "0")
		assert.ErrorContains(t, Default().ApplyEnv(), "must be at least 1")

		t.Setenv("FIXTUREGRID_WORKERS", "many")
		assert.ErrorContains(t, Default().ApplyEnv(), "parse FIXTUREGRID_WORKERS")
	})
}

func TestLoad_ExampleConfiguration(t *testing.T) {
	m, err := Load(context.Background(), filepath.Join("..", "..", "examples"))
	require.NoError(t, err)
	require.Len(t, m.Files, 1)
	assert.Equal(t, 4, m.Settings.Workers)
	assert.Equal(t, "network", m.Fixtures["socketio_client"].Retry)

	var args struct {
		Prefix string `cty:"prefix"`
	}
	require.NoError(t, m.DecodeFixtureArgs("env", &args))
	assert.Equal(t, "FIXTUREGRID_", args.Prefix)
}
