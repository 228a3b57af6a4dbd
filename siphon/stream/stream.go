// Package stream provides the channel stages the engine is assembled from.
//
// Every stage owns its output channel and closes it once its input is
// exhausted or its context ends, so stages compose into pipelines without
// leaking goroutines.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/on-the-ground/siphon_go/shared/orderedbuffer"
)

// Of emits vals in order and closes.
func Of[T any](ctx context.Context, vals ...T) <-chan T {
	out := make(chan T, len(vals))
	for _, v := range vals {
		out <- v
	}
	close(out)
	return out
}

// Empty returns a closed channel.
func Empty[T any]() <-chan T {
	out := make(chan T)
	close(out)
	return out
}

// Generate runs fn in its own goroutine. Values passed to yield are sent on
// the returned channel; yield reports false once ctx has ended, and fn
// should return then. The channel closes when fn returns.
func Generate[T any](ctx context.Context, fn func(ctx context.Context, yield func(T) bool)) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		fn(ctx, func(v T) bool {
			return Send(ctx, out, v)
		})
	}()
	return out
}

// Send delivers v unless ctx ends first.
func Send[T any](ctx context.Context, sink chan<- T, v T) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case sink <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// Map applies f to every value.
func Map[T any, R any](ctx context.Context, source <-chan T, f func(T) R) <-chan R {
	sink := make(chan R)
	go func() {
		defer close(sink)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-source:
				if !ok {
					return
				}
				if !Send(ctx, sink, f(v)) {
					return
				}
			}
		}
	}()
	return sink
}

// Filter forwards the values for which predicate holds.
func Filter[T any](ctx context.Context, source <-chan T, predicate func(T) bool) <-chan T {
	sink := make(chan T)
	go func() {
		defer close(sink)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-source:
				if !ok {
					return
				}
				if predicate(v) && !Send(ctx, sink, v) {
					return
				}
			}
		}
	}()
	return sink
}

// Tap calls watcher for every value before forwarding it unchanged.
func Tap[T any](ctx context.Context, source <-chan T, watcher func(T)) <-chan T {
	return Map(ctx, source, func(v T) T {
		watcher(v)
		return v
	})
}

// Pipe forwards source into sink until source closes or ctx ends. It does
// not close sink.
func Pipe[T any](ctx context.Context, source <-chan T, sink chan<- T) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-source:
			if !ok {
				return
			}
			if !Send(ctx, sink, v) {
				return
			}
		}
	}
}

// Merge interleaves sources in arrival order. No fairness is imposed between
// sources; values from a single source keep their relative order. The
// output closes once every source has closed or ctx ends.
func Merge[T any](ctx context.Context, sources ...<-chan T) <-chan T {
	sink := make(chan T)
	wg := sync.WaitGroup{}
	for _, source := range sources {
		if source == nil {
			continue
		}
		wg.Add(1)
		go func(source <-chan T) {
			defer wg.Done()
			Pipe(ctx, source, sink)
		}(source)
	}
	go func() {
		wg.Wait()
		close(sink)
	}()
	return sink
}

// Ticker emits next(t) every interval until ctx ends.
func Ticker[T any](ctx context.Context, interval time.Duration, next func(time.Time) T) <-chan T {
	return Generate(ctx, func(ctx context.Context, yield func(T) bool) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				if !yield(next(t)) {
					return
				}
			}
		}
	})
}

// OrderBy re-sequences source through a sliding window of the given size:
// values that arrive out of order by at most size positions are emitted in
// cmp order. Remaining values are flushed when source closes.
func OrderBy[T any](ctx context.Context, source <-chan T, size int, cmp orderedbuffer.CompareFunc[T]) <-chan T {
	sink := make(chan T)
	buf := orderedbuffer.NewWindow(size, cmp)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// drains even after ctx ends so Flush can finish
		for ordered := range buf.Out() {
			Send(ctx, sink, ordered)
		}
	}()

	go func() {
		defer func() {
			buf.Flush(ctx)
			<-done
			close(sink)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-source:
				if !ok {
					return
				}
				if !buf.Push(ctx, v) {
					return
				}
			}
		}
	}()
	return sink
}

// Collect drains source into a slice until it closes or ctx ends.
func Collect[T any](ctx context.Context, source <-chan T) []T {
	var res []T
	for {
		select {
		case <-ctx.Done():
			return res
		case v, ok := <-source:
			if !ok {
				return res
			}
			res = append(res, v)
		}
	}
}
