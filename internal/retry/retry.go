package retry

import (
	"context"
	"time"

	"github.com/vk/fixturegrid/internal/ctxlog"
)

// Action is a single attempt of a retried operation.
type Action[T any] func(ctx context.Context) (T, error)

// Do runs action until it succeeds or policy.MaxAttempts attempts have
// failed. On success the value of the successful attempt is returned and no
// further attempt is made. On exhaustion the error is an *ActionFailedError.
// If ctx is done before the first attempt or while waiting between attempts,
// the error is a *CancelledError.
func Do[T any](ctx context.Context, policy Policy, action Action[T]) (T, error) {
	var zero T
	if err := policy.Validate(); err != nil {
		return zero, err
	}

	logger := ctxlog.FromContext(ctx)
	errs := make([]error, 0, policy.MaxAttempts)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &CancelledError{Attempts: attempt - 1, Cause: err, LastErr: last(errs)}
		}

		value, err := action(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Debug("Action succeeded after retry.", "attempt", attempt)
			}
			return value, nil
		}
		errs = append(errs, err)

		if attempt == policy.MaxAttempts {
			logger.Debug("Action attempts exhausted.", "attempts", attempt, "error", err)
			return zero, &ActionFailedError{Attempts: attempt, Errors: errs}
		}

		logger.Debug("Action attempt failed, waiting before retry.",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"interval", policy.Interval,
			"error", err,
		)
		if err := wait(ctx, policy.Interval); err != nil {
			return zero, &CancelledError{Attempts: attempt, Cause: err, LastErr: last(errs)}
		}
	}
}

// wait blocks for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func last(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[len(errs)-1]
}
