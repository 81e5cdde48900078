package config

import (
	"fmt"

	"github.com/vk/fixturegrid/internal/env"
)

// ApplyEnv overrides settings with FIXTUREGRID_* environment variables.
func (m *Model) ApplyEnv() error {
	m.Settings.BaseURL = env.String(env.Prefix+"BASE_URL", m.Settings.BaseURL)

	workers, err := env.Int(env.Prefix+"WORKERS", m.Settings.Workers)
	if err != nil {
		return err
	}
	if workers < 1 {
		return fmt.Errorf("%sWORKERS must be at least 1, got %d", env.Prefix, workers)
	}
	m.Settings.Workers = workers

	timeout, err := env.Duration(env.Prefix+"TEST_TIMEOUT", m.Settings.TestTimeout)
	if err != nil {
		return err
	}
	m.Settings.TestTimeout = timeout

	headless, err := env.Bool(env.Prefix+"HEADLESS", m.Browser.Headless)
	if err != nil {
		return err
	}
	m.Browser.Headless = headless

	enabled, err := env.Bool(env.Prefix+"BROWSER", m.Browser.Enabled)
	if err != nil {
		return err
	}
	m.Browser.Enabled = enabled

	m.SocketIO.URL = env.String(env.Prefix+"SOCKETIO_URL", m.SocketIO.URL)
	return nil
}
