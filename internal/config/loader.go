package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fsutil"
	"github.com/vk/fixturegrid/internal/retry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// fileRoot is used to decode every top-level block a file may contain.
type fileRoot struct {
	Settings *settingsBlock  `hcl:"settings,block"`
	Retries  []*retryBlock   `hcl:"retry,block"`
	Fixtures []*fixtureBlock `hcl:"fixture,block"`
	Browser  *browserBlock   `hcl:"browser,block"`
	SocketIO *socketIOBlock  `hcl:"socketio,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type settingsBlock struct {
	BaseURL     *string `hcl:"base_url,optional"`
	TestTimeout *string `hcl:"test_timeout,optional"`
	Workers     *int    `hcl:"workers,optional"`
}

type retryBlock struct {
	Name        string `hcl:"name,label"`
	MaxAttempts int    `hcl:"max_attempts"`
	Interval    string `hcl:"interval,optional"`
}

type fixtureBlock struct {
	Name   string   `hcl:"name,label"`
	Retry  *string  `hcl:"retry,optional"`
	Remain hcl.Body `hcl:",remain"`
}

type browserBlock struct {
	Enabled  *bool `hcl:"enabled,optional"`
	Headless *bool `hcl:"headless,optional"`
}

type socketIOBlock struct {
	URL       *string `hcl:"url,optional"`
	Namespace *string `hcl:"namespace,optional"`
	Event     *string `hcl:"event,optional"`
}

// Load reads every .hcl file found under paths, in order, on top of Default.
// Paths may be files or directories; paths that do not exist are skipped.
func Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := Default()

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := model.merge(hclFile.Body, evalCtx); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		model.Files = append(model.Files, file)
	}

	if err := model.check(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "files", len(model.Files), "retries", len(model.Retries), "fixtures", len(model.Fixtures))
	return model, nil
}

// Parse decodes a single in-memory HCL document on top of Default.
func Parse(filename string, src []byte) (*Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	model := Default()
	if err := model.merge(hclFile.Body, newEvalContext()); err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}
	model.Files = append(model.Files, filename)
	return model, model.check()
}

func (m *Model) merge(body hcl.Body, evalCtx *hcl.EvalContext) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, evalCtx, &root); diags.HasErrors() {
		return diags
	}

	if s := root.Settings; s != nil {
		if s.BaseURL != nil {
			m.Settings.BaseURL = *s.BaseURL
		}
		if s.TestTimeout != nil {
			d, err := time.ParseDuration(*s.TestTimeout)
			if err != nil {
				return fmt.Errorf("settings.test_timeout: %w", err)
			}
			m.Settings.TestTimeout = d
		}
		if s.Workers != nil {
			m.Settings.Workers = *s.Workers
		}
	}

	for _, rb := range root.Retries {
		if _, dup := m.Retries[rb.Name]; dup {
			return fmt.Errorf("retry policy %q defined more than once", rb.Name)
		}
		p := retry.Policy{MaxAttempts: rb.MaxAttempts}
		if rb.Interval != "" {
			d, err := time.ParseDuration(rb.Interval)
			if err != nil {
				return fmt.Errorf("retry %q interval: %w", rb.Name, err)
			}
			p.Interval = d
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("retry %q: %w", rb.Name, err)
		}
		m.Retries[rb.Name] = p
	}

	for _, fb := range root.Fixtures {
		if _, dup := m.Fixtures[fb.Name]; dup {
			return fmt.Errorf("fixture %q configured more than once", fb.Name)
		}
		f := &Fixture{Name: fb.Name, Arguments: make(map[string]cty.Value)}
		if fb.Retry != nil {
			f.Retry = *fb.Retry
		}
		attrs, diags := fb.Remain.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("fixture %q: %w", fb.Name, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return fmt.Errorf("fixture %q argument %q: %w", fb.Name, name, diags)
			}
			f.Arguments[name] = val
		}
		m.Fixtures[fb.Name] = f
	}

	if b := root.Browser; b != nil {
		if b.Enabled != nil {
			m.Browser.Enabled = *b.Enabled
		}
		if b.Headless != nil {
			m.Browser.Headless = *b.Headless
		}
	}

	if s := root.SocketIO; s != nil {
		if s.URL != nil {
			m.SocketIO.URL = *s.URL
		}
		if s.Namespace != nil {
			m.SocketIO.Namespace = *s.Namespace
		}
		if s.Event != nil {
			m.SocketIO.Event = *s.Event
		}
	}
	return nil
}

// check validates cross-block references once every file is merged.
func (m *Model) check() error {
	if m.Settings.Workers < 1 {
		return fmt.Errorf("settings.workers must be at least 1, got %d", m.Settings.Workers)
	}
	if m.Settings.TestTimeout < 0 {
		return fmt.Errorf("settings.test_timeout must not be negative")
	}
	names := make([]string, 0, len(m.Fixtures))
	for name := range m.Fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := m.Fixtures[name]
		if f.Retry == "" {
			continue
		}
		if _, ok := m.Retries[f.Retry]; !ok {
			return fmt.Errorf("fixture %q refers to undefined retry policy %q", name, f.Retry)
		}
	}
	return nil
}

// newEvalContext exposes the process environment as `env.NAME` and a few
// string functions to argument expressions.
func newEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	envVal := cty.EmptyObjectVal
	if len(vars) > 0 {
		envVal = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envVal},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
		},
	}
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
		for _, p := range found {
			if _, wasSeen := seen[p]; !wasSeen {
				allFiles = append(allFiles, p)
				seen[p] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
