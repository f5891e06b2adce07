// Package retry runs an action with a bounded number of attempts and a
// backoff between them.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrExhausted = errors.New("retry: attempts exhausted")

// Backoff returns the delay after the given 1-based attempt.
type Backoff func(attempt int) time.Duration

type Policy struct {
	MaxAttempts int
	Backoff     Backoff
}

const maxDelay = time.Duration(math.MaxInt64)

// Exponential doubles base after every attempt, capped at max. Without a
// max the delay saturates instead of overflowing.
func Exponential(base, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			if d > maxDelay/2 {
				d = maxDelay
				break
			}
			d *= 2
			if max > 0 && d >= max {
				return max
			}
		}
		if max > 0 && d > max {
			return max
		}
		return d
	}
}

// Constant waits d between every attempt.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// ExhaustedError is returned once every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error { return []error{ErrExhausted, e.Last} }

type Result struct {
	Attempts int
}

// Execute calls action until it succeeds, fails permanently, or the policy
// runs out of attempts. Only the wait between attempts observes ctx.
func Execute(ctx context.Context, policy Policy, action func(ctx context.Context) error) (Result, error) {
	max := policy.MaxAttempts
	if max < 1 {
		max = 1
	}

	var res Result
	for {
		res.Attempts++
		err := action(ctx)
		if err == nil {
			return res, nil
		}
		if IsPermanent(err) {
			return res, err
		}
		if res.Attempts >= max {
			return res, &ExhaustedError{Attempts: res.Attempts, Last: err}
		}

		var delay time.Duration
		if policy.Backoff != nil {
			delay = policy.Backoff(res.Attempts)
		}
		if err := wait(ctx, delay); err != nil {
			return res, fmt.Errorf("retry cancelled after %d attempts: %w", res.Attempts, err)
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
