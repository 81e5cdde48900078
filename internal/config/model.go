package config

import (
	"time"

	"github.com/vk/fixturegrid/internal/retry"
	"github.com/zclconf/go-cty/cty"
)

// Model is the loaded configuration of a run.
type Model struct {
	Settings Settings
	Retries  map[string]retry.Policy
	Fixtures map[string]*Fixture
	Browser  Browser
	SocketIO SocketIO
	// Files lists the configuration files that were read, in load order.
	Files []string
}

// Settings holds run-wide options.
type Settings struct {
	BaseURL     string
	TestTimeout time.Duration
	Workers     int
}

// Fixture is the configuration of one `fixture "<name>"` block.
type Fixture struct {
	Name string
	// Retry names a `retry` block. Empty means no retry.
	Retry     string
	Arguments map[string]cty.Value
}

// Browser configures the browser fixtures. They are off unless enabled.
type Browser struct {
	Enabled  bool
	Headless bool
}

// SocketIO configures the realtime example suite.
type SocketIO struct {
	URL       string
	Namespace string
	Event     string
}

// Default returns the configuration used when no file is given.
func Default() *Model {
	return &Model{
		Settings: Settings{
			TestTimeout: 30 * time.Second,
			Workers:     1,
		},
		Retries:  make(map[string]retry.Policy),
		Fixtures: make(map[string]*Fixture),
		Browser:  Browser{Headless: true},
		SocketIO: SocketIO{Namespace: "/", Event: "echo"},
	}
}
