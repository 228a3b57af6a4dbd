package concurrency

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Supervisor manages the lifecycle of the goroutines it spawns.
//
//   - Every child runs with its own context derived from the supervisor's,
//     so cancelling the parent cancels every child.
//   - Panics are recovered per child, logged, and reported to the panic hook;
//     a panicking child never takes its siblings down.
//   - Close refuses new children and joins the running ones.
type Supervisor struct {
	ctx     context.Context
	logger  *zap.Logger
	onPanic func(recovered any)

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool

	running atomic.Int64
	panics  atomic.Int64
}

// New creates a supervisor bound to ctx. onPanic may be nil.
func New(ctx context.Context, logger *zap.Logger, onPanic func(recovered any)) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onPanic == nil {
		onPanic = func(any) {}
	}
	return &Supervisor{
		ctx:     ctx,
		logger:  logger,
		onPanic: onPanic,
	}
}

// Go starts each function in its own goroutine with its own context.
// It returns false, starting nothing, once the supervisor is closed or its
// context has ended.
func (s *Supervisor) Go(fns ...func(context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ctx.Err() != nil {
		return false
	}

	ready := sync.WaitGroup{}
	for _, fn := range fns {
		childCtx, cancel := context.WithCancel(s.ctx)
		s.wg.Add(1)
		s.running.Add(1)
		ready.Add(1)
		go func(f func(context.Context), ctx context.Context) {
			defer s.wg.Done()
			defer s.running.Add(-1)
			defer cancel()
			defer func() {
				if r := recover(); r != nil {
					s.panics.Add(1)
					s.logger.Error("panic in supervised routine", zap.String("panic", fmt.Sprint(r)))
					s.onPanic(r)
				}
			}()
			ready.Done()
			f(ctx)
		}(fn, childCtx)
	}

	// Wait until all child goroutines have been started before returning
	ready.Wait()
	return true
}

// Running reports the number of children that have not returned yet.
func (s *Supervisor) Running() int64 {
	return s.running.Load()
}

// Panics reports the number of children that ended in a panic.
func (s *Supervisor) Panics() int64 {
	return s.panics.Load()
}

// Close stops accepting children and blocks until the running ones return.
// Callers that want the children to stop early cancel the parent context
// first.
func (s *Supervisor) Close() {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()

	if !alreadyClosed {
		s.logger.Debug("waiting for all routines to finish", zap.Int64("running", s.running.Load()))
	}
	s.wg.Wait()
	if !alreadyClosed {
		s.logger.Debug("all routines finished")
	}
}
