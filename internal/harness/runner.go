package harness

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/vk/fixturegrid/internal/composer"
	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/fixture"
	"github.com/vk/fixturegrid/internal/registry"
)

// Options configures a run.
type Options struct {
	Registry *registry.Registry
	// Filter, when set, excludes tests for which it returns false.
	Filter Filter
	// Workers is the number of tests run in parallel. Zero means one.
	Workers int
	// TestTimeout bounds each test's context. Zero means no timeout.
	TestTimeout time.Duration
	Logger      TestLogger
}

// Run executes suite and returns its results. The error is only set when the
// run could not start; test failures are reported in the results.
func Run(ctx context.Context, suite Suite, opts Options) (*Results, error) {
	if opts.Logger == nil {
		opts.Logger = nullTestLogger{}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	if err := Validate(suite, opts.Registry); err != nil {
		return nil, err
	}
	comp, err := composer.New(opts.Registry)
	if err != nil {
		return nil, err
	}

	results := &Results{RunID: uuid.New(), Started: time.Now()}
	ctx = ctxlog.With(ctx, "run_id", results.RunID.String())
	logger := ctxlog.FromContext(ctx)

	if err := comp.BeginRun(ctx); err != nil {
		return nil, err
	}
	logger.Info("▶️ Starting run", "tests", len(suite), "workers", workers)

	slots := make([]TestResult, len(suite))
	jobs := make(chan int)
	var wg sync.WaitGroup
	var warnMu sync.Mutex

	addWarnings := func(test string, err error) {
		warnMu.Lock()
		defer warnMu.Unlock()
		results.TeardownWarnings = append(results.TeardownWarnings, teardownWarnings(test, err)...)
	}

	logger.Debug("Starting worker pool.", "workers", workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				slots[i] = runTest(ctx, comp, suite[i], opts, addWarnings)
			}
			logger.Debug("Worker finished.", "workerID", workerID)
		}(w)
	}

	for i, test := range suite {
		id := test.ID()
		if opts.Filter != nil && !opts.Filter(id) {
			opts.Logger.TestSkipped(id, "excluded by filter parameters")
			slots[i] = TestResult{TestID: id, Skipped: true, SkipReason: "excluded by filter parameters"}
			continue
		}
		if ctx.Err() != nil {
			slots[i] = TestResult{TestID: id, Skipped: true, SkipReason: "run interrupted"}
			opts.Logger.TestSkipped(id, "run interrupted")
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := comp.EndRun(ctx); err != nil {
		addWarnings("", err)
	}

	for _, r := range slots {
		results.Tests = append(results.Tests, r)
		switch {
		case r.Skipped:
			results.Skipped = append(results.Skipped, r)
		case r.Failed():
			results.Failures = append(results.Failures, r)
		}
	}
	results.Duration = time.Since(results.Started)

	logger.Info("🏁 Run finished",
		"passed", results.Passed(),
		"failed", len(results.Failures),
		"skipped", len(results.Skipped),
		"teardown_warnings", len(results.TeardownWarnings),
		"duration", results.Duration.Round(time.Millisecond).String())
	return results, nil
}

func runTest(ctx context.Context, comp *composer.Composer, test Test, opts Options, addWarnings func(string, error)) TestResult {
	id := test.ID()
	opts.Logger.TestStarted(id)

	ctx = ctxlog.With(ctx, "test", id.String())
	testCtx := ctx
	if opts.TestTimeout > 0 {
		var cancel context.CancelFunc
		testCtx, cancel = context.WithTimeout(ctx, opts.TestTimeout)
		defer cancel()
	}

	started := time.Now()
	scope, err := comp.BeginTest(testCtx, id.String())
	if err != nil {
		opts.Logger.TestError(id, err)
		opts.Logger.TestFinished(id, true, 0, nil)
		return TestResult{TestID: id, Errors: []error{err}}
	}

	t := &T{
		id:       id,
		ctx:      testCtx,
		composer: comp,
		scope:    scope,
		logger:   opts.Logger,
	}
	t.run(func(t *T) {
		for _, name := range test.Uses {
			if _, err := t.Fixture(name); err != nil {
				t.Fatalf("fixture %q: %v", name, err)
			}
		}
		test.Fn(t)
	})

	if errors.Is(testCtx.Err(), context.DeadlineExceeded) && !t.skipped && !t.Failed() {
		t.Errorf("test exceeded its timeout of %s", opts.TestTimeout)
	}

	result := TestResult{
		TestID:     id,
		Errors:     t.errors,
		Skipped:    t.skipped,
		SkipReason: t.skipReason,
		Fixtures:   scope.Resolved(),
	}

	// Teardown runs after the verdict and never changes it.
	if err := comp.EndTest(ctx, scope); err != nil {
		addWarnings(id.String(), err)
	}
	result.Duration = time.Since(started)

	if result.Skipped {
		opts.Logger.TestSkipped(id, result.SkipReason)
	} else {
		opts.Logger.TestFinished(id, result.Failed(), result.Duration, t.debugLogger.Output())
	}
	return result
}

// teardownWarnings flattens the error returned by EndTest or EndRun.
func teardownWarnings(test string, err error) []TeardownWarning {
	var errs []error
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.WrappedErrors()
	} else {
		errs = []error{err}
	}

	warnings := make([]TeardownWarning, 0, len(errs))
	for _, e := range errs {
		var tdErr *fixture.TeardownError
		if errors.As(e, &tdErr) {
			warnings = append(warnings, TeardownWarning{
				Fixture: tdErr.Name,
				Scope:   tdErr.Scope.String(),
				Test:    test,
				Err:     tdErr.Err,
			})
			continue
		}
		warnings = append(warnings, TeardownWarning{Test: test, Scope: "unknown", Err: e})
	}
	return warnings
}
