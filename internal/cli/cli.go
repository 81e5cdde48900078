package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/fixturegrid/internal/app"
	"github.com/vk/fixturegrid/internal/harness"
)

// Exit codes.
const (
	ExitTestsFailed = 1
	ExitUsage       = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Usage wraps err as a startup failure.
func Usage(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// FromRunError maps the error returned by App.Run to an exit code: failed
// tests exit with 1, anything that kept the run from starting with 2.
func FromRunError(err error) error {
	if err == nil {
		return nil
	}
	var failed *harness.FailedError
	if errors.As(err, &failed) {
		return &ExitError{Code: ExitTestsFailed, Message: err.Error()}
	}
	return Usage(err)
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("fixturegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
fixturegrid - runs test suites on shared, dependency-ordered fixtures.

Usage:
  fixturegrid [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files.
    Without one the built-in defaults are used.

Options:
`)
		flagSet.PrintDefaults()
	}

	var cfg app.Config
	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	cFlag := flagSet.String("c", "", "Path to the configuration file or directory (shorthand).")
	flagSet.Var(&cfg.Run, "run", "Regex of tests to run. Can be repeated.")
	flagSet.Var(&cfg.Skip, "skip", "Regex of tests to skip. Can be repeated.")
	flagSet.IntVar(&cfg.Workers, "workers", 0, "Number of tests run in parallel. 0 uses settings.workers.")
	flagSet.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	reportFlag := flagSet.String("report", harness.ReportText, "Report format. Options: 'text' or 'yaml'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, Usage(err)
	}
	slog.Debug("Arguments parsed successfully.")

	for _, p := range []string{*configFlag, *cFlag} {
		if p != "" {
			cfg.ConfigPaths = append(cfg.ConfigPaths, p)
		}
	}
	cfg.ConfigPaths = append(cfg.ConfigPaths, flagSet.Args()...)
	cfg.LogFormat = strings.ToLower(*logFormatFlag)
	cfg.LogLevel = strings.ToLower(*logLevelFlag)
	cfg.Report = strings.ToLower(*reportFlag)

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, Usage(err)
	}

	slog.Debug("CLI parser finished successfully.", "config_paths", config.ConfigPaths)
	return config, false, nil
}
