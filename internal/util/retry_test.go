package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithContext_SuccessImmediate(t *testing.T) {
	calls := 0
	result, err := RetryWithContext(context.Background(), 3, 0, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestRetryWithContext_SuccessAfterRetries(t *testing.T) {
	calls := 0
	result, err := RetryWithContext(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 99, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 99, result)
	assert.Equal(t, 3, calls)
}

func TestRetryWithContext_PersistentFailure(t *testing.T) {
	calls := 0
	_, err := RetryWithContext(context.Background(), 3, 0, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("persistent")
	})
	require.EqualError(t, err, "persistent")
	assert.Equal(t, 3, calls)
}

func TestRetryWithContext_MaxTriesZeroOrNegative(t *testing.T) {
	for _, tries := range []int{0, -2} {
		calls := 0
		_, err := RetryWithContext(context.Background(), tries, 0, func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("fail")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls, "maxTries=%d", tries)
	}
}

func TestRetryWithContext_PermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("bad request")
	calls := 0
	_, err := RetryWithContext(context.Background(), 5, 0, func(ctx context.Context) (int, error) {
		calls++
		return 0, NewPermanent(sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestRetryWithContext_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := RetryWithContext(ctx, 5, 0, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryWithContext_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	calls := 0
	_, err := RetryWithContext(ctx, 5, time.Hour, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestRetryWithContext_FunctionReturnsContextError(t *testing.T) {
	calls := 0
	_, err := RetryWithContext(context.Background(), 3, 0, func(ctx context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestRetryErrWithContext(t *testing.T) {
	calls := 0
	err := RetryErrWithContext(context.Background(), 2, 0, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewPermanent_Nil(t *testing.T) {
	assert.NoError(t, NewPermanent(nil))
}
