package retry

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy is returned, without any attempt being made, when a Policy
// cannot be executed.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the total number of invocations allowed, including the
	// first one. It must be at least 1.
	MaxAttempts int
	// Interval is the passive delay between two attempts. Zero means retry
	// immediately.
	Interval time.Duration
}

// Once is a policy that makes exactly one attempt.
var Once = Policy{MaxAttempts: 1}

// Validate reports whether the policy can be executed.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative, got %s", ErrInvalidPolicy, p.Interval)
	}
	return nil
}

func (p Policy) String() string {
	return fmt.Sprintf("%d attempt(s) every %s", p.MaxAttempts, p.Interval)
}
