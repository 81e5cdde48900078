package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/fixturegrid/internal/config"
	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/harness"
	"github.com/vk/fixturegrid/internal/registry"
	"github.com/vk/fixturegrid/internal/suites"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	registry   *registry.Registry
	suite      harness.Suite
	httpServer *http.Server
}

// New is the constructor for the main application. It loads configuration,
// registers the modules (the core set when none are given), and validates
// the registry and the suite. Any error here is a startup error.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := config.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := model.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if cfg.Workers > 0 {
		model.Settings.Workers = cfg.Workers
	}
	logger.Debug("Configuration loaded.", "files", model.Files, "workers", model.Settings.Workers)

	reg := registry.New()
	reg.SetArguments(model)
	if len(modules) == 0 {
		modules = coreModules(model)
	}
	if err := reg.RegisterModules(modules...); err != nil {
		return nil, err
	}
	logger.Debug("All Go modules registered.", "modules", len(modules), "fixtures", reg.Len())

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.", "order", reg.Order())

	suite := cfg.Suite
	if suite == nil {
		suite = suites.All(suiteOptions(model))
	}
	if err := harness.Validate(suite, reg); err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		model:    model,
		registry: reg,
		suite:    suite,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration.
func (a *App) Model() *config.Model {
	return a.model
}
