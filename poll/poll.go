// Package poll provides bounded poll-until-predicate loops. Every loop has an
// explicit attempt or deadline budget; nothing in this package waits forever.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBudgetExceeded is returned when a loop exhausts its attempt count or
// deadline without the predicate becoming true.
var ErrBudgetExceeded = errors.New("poll budget exceeded")

// Config bounds a polling loop. At least one of MaxAttempts and Deadline must
// be set; when both are set, whichever is hit first ends the loop.
type Config struct {
	// Interval is the fixed sleep between attempts.
	Interval time.Duration

	// MaxAttempts caps the number of invocations of the poll function.
	// Zero means unbounded by attempts (Deadline must then be set).
	MaxAttempts int

	// Deadline caps the total wall-clock duration of the loop.
	// Zero means unbounded by time (MaxAttempts must then be set).
	Deadline time.Duration
}

func (c Config) validate() error {
	if c.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.MaxAttempts <= 0 && c.Deadline <= 0 {
		return errors.New("poll requires an attempt or deadline bound")
	}
	return nil
}

// Until invokes fn on the configured interval until it reports done, returns
// an error, or the budget runs out.
//
// fn returning a non-nil error aborts the loop immediately: errors are fatal,
// not retried. fn returning (false, nil) means "not yet" and schedules the
// next attempt. Budget exhaustion returns an error wrapping ErrBudgetExceeded.
func Until(ctx context.Context, cfg Config, fn func(ctx context.Context) (bool, error)) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		// The last attempt has already failed; sleeping again would only
		// delay the budget error.
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return fmt.Errorf("%w: %d attempts at %s intervals", ErrBudgetExceeded, cfg.MaxAttempts, cfg.Interval)
		}

		if err := sleep(ctx, cfg.Interval); err != nil {
			return fmt.Errorf("%w: deadline of %s elapsed after %d attempts", ErrBudgetExceeded, cfg.Deadline, attempt)
		}
	}
}

// Retry invokes fn up to attempts times, sleeping interval between failures,
// and returns nil on the first success. The last error is returned when all
// attempts fail. Used for bounded retries of transient infrastructure errors.
func Retry(ctx context.Context, attempts int, interval time.Duration, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		return errors.New("retry requires a positive attempt count")
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			return lastErr
		}
	}
	return fmt.Errorf("%d attempts failed, last error: %w", attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
