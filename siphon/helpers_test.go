package siphon_test

import (
	"testing"
	"time"
)

const waitFor = 2 * time.Second

func take[T any](t *testing.T, ch <-chan T, n int) []T {
	t.Helper()
	res := make([]T, 0, n)
	timeout := time.After(waitFor)
	for len(res) < n {
		select {
		case v, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %d of %d values: %v", len(res), n, res)
			}
			res = append(res, v)
		case <-timeout:
			t.Fatalf("timed out after %d of %d values: %v", len(res), n, res)
		}
	}
	return res
}

func waitClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	timeout := time.After(waitFor)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("channel was not closed")
		}
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("engine did not terminate")
	}
}
