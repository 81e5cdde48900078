package app

import (
	"github.com/vk/fixturegrid/internal/config"
	"github.com/vk/fixturegrid/internal/registry"
	"github.com/vk/fixturegrid/internal/suites"
	"github.com/vk/fixturegrid/modules/api_client"
	"github.com/vk/fixturegrid/modules/browser"
	"github.com/vk/fixturegrid/modules/env_vars"
	"github.com/vk/fixturegrid/modules/http_client"
	"github.com/vk/fixturegrid/modules/mock_server"
	"github.com/vk/fixturegrid/modules/socketio_client"
)

// coreModules is the definitive list of all modules that are compiled into
// the fixturegrid binary, configured from the loaded model.
func coreModules(m *config.Model) []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&http_client.Module{},
		&mock_server.Module{},
		&api_client.Module{BaseURL: m.Settings.BaseURL},
		&socketio_client.Module{URL: m.SocketIO.URL, Namespace: m.SocketIO.Namespace},
		&browser.Module{Enabled: m.Browser.Enabled, Headless: m.Browser.Headless},
	}
}

func suiteOptions(m *config.Model) suites.Options {
	return suites.Options{
		SocketIOURL:   m.SocketIO.URL,
		SocketIOEvent: m.SocketIO.Event,
		Browser:       m.Browser.Enabled,
	}
}
