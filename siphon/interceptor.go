package siphon

import (
	"context"

	"github.com/on-the-ground/siphon_go/shared/helper"
	"github.com/on-the-ground/siphon_go/siphon/stream"
)

// Interceptor transforms a stream at one of the engine seams. It may filter,
// delay, map or observe values, and must close its output once in closes
// or ctx ends.
type Interceptor[T any] func(ctx context.Context, in <-chan T) <-chan T

// Chain applies interceptors to in, in registration order.
func Chain[T any](ctx context.Context, in <-chan T, interceptors ...Interceptor[T]) <-chan T {
	out := in
	for _, i := range interceptors {
		if i != nil {
			out = i(ctx, out)
		}
	}
	return out
}

// Watching builds an interceptor that calls watcher for every value and
// forwards it unchanged.
func Watching[T any](watcher func(T)) Interceptor[T] {
	return func(ctx context.Context, in <-chan T) <-chan T {
		return stream.Tap(ctx, in, watcher)
	}
}

// WatchingOnly builds an interceptor that calls watcher for the values whose
// dynamic type is X, and forwards every value unchanged.
func WatchingOnly[T, X any](watcher func(X)) Interceptor[T] {
	return Watching(func(v T) {
		if x, ok := helper.Cast[X](v); ok {
			watcher(x)
		}
	})
}

// Filtering builds an interceptor that drops the values predicate rejects.
func Filtering[T any](predicate func(T) bool) Interceptor[T] {
	return func(ctx context.Context, in <-chan T) <-chan T {
		return stream.Filter(ctx, in, predicate)
	}
}

// Ordering re-sequences values through a sliding window of size: values at
// most size positions out of place leave in cmp order. The last size values
// are held until more arrive or the input closes, so it suits event sources
// and other streams that keep flowing or end.
func Ordering[T any](size int, cmp func(a, b T) int) Interceptor[T] {
	return func(ctx context.Context, in <-chan T) <-chan T {
		return stream.OrderBy(ctx, in, size, cmp)
	}
}

// EventSource is a perpetual producer of changes. It runs for the engine's
// whole lifetime and must stop sending once ctx ends.
type EventSource[C any] func(ctx context.Context) <-chan C
