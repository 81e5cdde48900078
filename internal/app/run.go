package app

import (
	"context"
	"fmt"

	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/harness"
)

// Run executes the suite and writes the report to the app's output. It
// returns a *harness.FailedError when any test failed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if err := a.healthCheckServer(); err != nil {
		return err
	}
	defer a.closeHealthCheckServer()

	filters := harness.RegexFilters{MustMatch: a.config.Run, MustNotMatch: a.config.Skip}
	if desc := filters.Describe(); desc != "" {
		a.logger.Info("Test filters active.", "filters", desc)
	}
	a.logger.Info("Fixtures registered.", "count", a.registry.Len(), "names", a.registry.Names())

	results, err := harness.Run(ctx, a.suite, harness.Options{
		Registry:    a.registry,
		Filter:      filters.AsFilter,
		Workers:     a.model.Settings.Workers,
		TestTimeout: a.model.Settings.TestTimeout,
		Logger:      &harness.ConsoleLogger{Out: a.outW, DebugOutputOnFailure: true},
	})
	if err != nil {
		return fmt.Errorf("run failed to start: %w", err)
	}

	if err := harness.WriteReport(a.outW, results, a.config.Report); err != nil {
		return err
	}
	for _, w := range results.TeardownWarnings {
		a.logger.Warn("Teardown failed.", "fixture", w.Fixture, "scope", w.Scope, "test", w.Test, "error", w.Err)
	}

	a.logger.Debug("App.Run method finished.")
	return results.Err()
}
