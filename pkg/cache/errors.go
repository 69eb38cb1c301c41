package cache

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned when decoding a lookup that found nothing.
	ErrCacheMiss = errors.New("cache miss")

	errEmptyRecord = errors.New("record has neither value nor failure")
)

// RetryableError wraps an error to indicate it is transient. Transient
// failures trigger retries in fetchers and are never recorded by [Memo].
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// isTransient reports whether err must not be written to the cache.
func isTransient(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		IsRetryable(err)
}

// RecordedError is returned when a lookup hits a previously recorded failure.
type RecordedError struct {
	Namespace string
	Key       string
	Msg       string
}

func (e *RecordedError) Error() string {
	return e.Msg
}

// CorruptError describes data that a backend returned but that could not be
// decoded.
type CorruptError struct {
	Namespace string
	Key       string // empty when the whole namespace is unreadable
	Err       error
}

func (e *CorruptError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache namespace %q is corrupt: %v", e.Namespace, e.Err)
	}
	return fmt.Sprintf("cache record %s/%s is corrupt: %v", e.Namespace, e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }
