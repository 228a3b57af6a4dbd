package helper

import (
	"fmt"
	"reflect"
	"time"
)

// Cast asserts v to T. A nil interface never casts.
func Cast[T any](v any) (res T, ok bool) {
	res, ok = v.(T)
	return
}

// TypeOf returns the runtime type of v. For a nil interface it returns nil.
func TypeOf(v any) reflect.Type {
	return reflect.TypeOf(v)
}

// TypeName renders the runtime type of v for diagnostics, e.g. "demo.Tick".
func TypeName(v any) string {
	if t := reflect.TypeOf(v); t != nil {
		return t.String()
	}
	return "<nil>"
}

var ErrMaxAttempts = fmt.Errorf("max attempts reached")

// Retry calls fn until it succeeds or maxAttempts calls have failed, sleeping
// backoff between attempts.
func Retry(maxAttempts int, backoff time.Duration, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var err error
	for numAttempts := 1; ; numAttempts++ {
		if err = fn(); err == nil {
			return nil
		}
		if numAttempts >= maxAttempts {
			return fmt.Errorf("%w: %d, %w", ErrMaxAttempts, numAttempts, err)
		}
		time.Sleep(backoff)
	}
}
