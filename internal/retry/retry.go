// Package retry implements the bounded, jittered backoff applied to single
// store operations. Only errors marked Transient are retried; exhausting the
// attempts surfaces the last error for that one operation, never for a whole
// batch.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Transient marks an error as retryable (rate limit, temporary outage).
func Transient(err error) error {
	if err == nil {
		return nil
	}

	return &transientError{err: err}
}

// IsTransient reports whether err carries the Transient marker.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Do runs fn up to attempts times, sleeping base<<n plus up to the same again
// in jitter between tries. Non-transient errors and context cancellation stop
// immediately.
func Do(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}

		if i == attempts-1 {
			break
		}

		delay := base << i
		delay += rand.N(delay + 1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
