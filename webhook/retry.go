package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// retryableError marks a transient failure (network error, 5xx, 429).
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retry runs fn up to attempts times, doubling delay after each retryable
// failure. Other errors are returned at once.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error
	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.As(err, new(*retryableError)) {
			return err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests || code >= 500:
		return &retryableError{fmt.Errorf("status %d", code)}
	default:
		return fmt.Errorf("status %d", code)
	}
}
