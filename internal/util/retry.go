package util

import (
	"context"
	"errors"
	"time"
)

// Permanent marks an error that must not be retried. Retry helpers return the
// wrapped error immediately.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// NewPermanent wraps err so retry helpers stop on it.
func NewPermanent(err error) error {
	if err == nil {
		return nil
	}
	return &Permanent{Err: err}
}

func isTerminal(err error) bool {
	var p *Permanent
	return errors.As(err, &p) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func unwrapPermanent(err error) error {
	var p *Permanent
	if errors.As(err, &p) {
		return p.Err
	}
	return err
}

// RetryWithContext calls fn up to maxTries times until it returns nil error,
// or until ctx is done. Between attempts it waits backoff, doubled after every
// failure. If maxTries <= 0, it defaults to 1.
// Returns ctx.Err() if the context is canceled, otherwise returns the last error.
func RetryWithContext[T any](ctx context.Context, maxTries int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if i > 0 && backoff > 0 {
			if err := sleep(ctx, backoff<<(i-1)); err != nil {
				return zero, err
			}
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if isTerminal(err) {
			return zero, unwrapPermanent(err)
		}
		lastErr = err
	}
	return zero, lastErr
}

// RetryErrWithContext is RetryWithContext for functions that only return an error.
func RetryErrWithContext(ctx context.Context, maxTries int, backoff time.Duration, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, maxTries, backoff, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
