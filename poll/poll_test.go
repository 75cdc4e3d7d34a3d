package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Until(context.Background(), Config{Interval: time.Millisecond, MaxAttempts: 10}, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUntilExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	err := Until(context.Background(), Config{Interval: time.Millisecond, MaxAttempts: 5}, func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 5, calls)
}

func TestUntilDoesNotSleepAfterLastAttempt(t *testing.T) {
	start := time.Now()
	err := Until(context.Background(), Config{Interval: time.Hour, MaxAttempts: 1}, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Less(t, time.Since(start), time.Second, "budget exhaustion must not pay a trailing interval")
}

func TestUntilExhaustsDeadline(t *testing.T) {
	err := Until(context.Background(), Config{Interval: 5 * time.Millisecond, Deadline: 20 * time.Millisecond}, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestUntilAbortsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Until(context.Background(), Config{Interval: time.Millisecond, MaxAttempts: 10}, func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "errors must not be retried")
}

func TestUntilRejectsUnboundedConfig(t *testing.T) {
	err := Until(context.Background(), Config{Interval: time.Millisecond}, func(ctx context.Context) (bool, error) {
		return true, nil
	})
	require.Error(t, err)
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	last := errors.New("still broken")
	err := Retry(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		return last
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, last)
}
