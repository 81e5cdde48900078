// Package retry executes a fallible operation under a bounded retry policy.
//
// A Policy fixes the maximum number of attempts and a constant delay between
// them. Do invokes the action until it succeeds or the attempts run out, and
// reports exhaustion as an *ActionFailedError that keeps every attempt's
// error. The delay between attempts honours context cancellation: an aborted
// context ends the loop immediately with a *CancelledError.
//
// The action may be invoked several times. Callers are responsible for making
// it idempotent; side effects of failed attempts are neither deduplicated nor
// rolled back.
//
//	policy := retry.Policy{MaxAttempts: 3, Interval: 100 * time.Millisecond}
//	status, err := retry.Do(ctx, policy, func(ctx context.Context) (int, error) {
//	    return ping(ctx)
//	})
package retry
