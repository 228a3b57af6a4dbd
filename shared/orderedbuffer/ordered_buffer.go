package orderedbuffer

import (
	"context"
	"slices"
	"sync/atomic"
)

type CompareFunc[T any] func(a, b T) int

// Window holds up to size values sorted by compare. Pushing into a full
// window releases its smallest value on Out. Push and Flush must be called
// from one goroutine.
type Window[T any] struct {
	data    []T
	size    int
	compare CompareFunc[T]

	out    chan T
	closed atomic.Bool
}

func NewWindow[T any](size int, cmp CompareFunc[T]) *Window[T] {
	if size <= 0 {
		size = 1
	}
	return &Window[T]{
		data:    make([]T, 0, size+1),
		size:    size,
		compare: cmp,
		out:     make(chan T, size*2),
	}
}

// Push inserts val keeping the window sorted. Equal values keep their
// arrival order. It returns false once the window is flushed or ctx ends
// while releasing a value.
func (w *Window[T]) Push(ctx context.Context, val T) bool {
	if w.closed.Load() {
		return false
	}

	idx, _ := slices.BinarySearchFunc(w.data, val, func(e, t T) int {
		if w.compare(e, t) <= 0 {
			return -1
		}
		return 1
	})
	w.data = slices.Insert(w.data, idx, val)

	if len(w.data) > w.size {
		released := w.data[0]
		var zero T
		w.data[0] = zero
		w.data = w.data[1:]
		select {
		case <-ctx.Done():
			return false
		case w.out <- released:
		}
	}
	return true
}

// Out delivers released values in order. It is closed by Flush.
func (w *Window[T]) Out() <-chan T {
	return w.out
}

// Flush releases every held value and closes Out. Later calls are no-ops.
func (w *Window[T]) Flush(ctx context.Context) {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(w.out)
		for _, v := range w.data {
			select {
			case <-ctx.Done():
				return
			case w.out <- v:
			}
		}
		w.data = nil
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}
