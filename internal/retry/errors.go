package retry

import (
	"fmt"
)

// ActionFailedError reports that every attempt allowed by a policy failed.
type ActionFailedError struct {
	Attempts int
	// Errors holds the error of each attempt, in attempt order.
	Errors []error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("action failed after %d attempt(s): %v", e.Attempts, e.Last())
}

// Last returns the error of the final attempt.
func (e *ActionFailedError) Last() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Unwrap exposes every attempt error to errors.Is and errors.As.
func (e *ActionFailedError) Unwrap() []error {
	return e.Errors
}

// CancelledError reports that the retry loop was aborted by its context
// before the attempts were exhausted.
type CancelledError struct {
	// Attempts is the number of attempts that completed before cancellation.
	Attempts int
	// Cause is the context error.
	Cause error
	// LastErr is the error of the most recent attempt, if any.
	LastErr error
}

func (e *CancelledError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("retry cancelled after %d attempt(s): %v (last error: %v)", e.Attempts, e.Cause, e.LastErr)
	}
	return fmt.Sprintf("retry cancelled after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *CancelledError) Unwrap() error {
	return e.Cause
}
