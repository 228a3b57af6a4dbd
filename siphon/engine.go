package siphon

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/on-the-ground/siphon_go/shared/helper"
	"github.com/on-the-ground/siphon_go/siphon/concurrency"
	"github.com/on-the-ground/siphon_go/siphon/config"
	"github.com/on-the-ground/siphon_go/siphon/internal/handlers"
	"github.com/on-the-ground/siphon_go/siphon/internal/model"
	"github.com/on-the-ground/siphon_go/siphon/stream"
	"go.uber.org/zap"
)

// engine is the pipeline shared by Siphon and Composite.
type engine[S, C, A any] struct {
	id       string
	settings config.Settings
	logger   *zap.Logger

	initial  S
	reduce   func(S, C) (Effect[S, A], error)
	same     func(prev, next S) bool
	sources  []EventSource[C]
	handlers *handlerSet[C, A]

	changeInterceptors []Interceptor[C]
	actionInterceptors []Interceptor[A]
	stateInterceptors  []Interceptor[S]

	ctx      context.Context
	cancel   context.CancelCauseFunc
	changes  chan C
	feedback chan C
	actions  chan A
	states   *broadcaster[S]
	stats    counters

	lazy      bool
	startOnce sync.Once
	done      chan struct{}
}

func newEngine[S, C, A any](life context.Context, settings config.Settings, logger *zap.Logger, initial S, lazy bool) *engine[S, C, A] {
	settings = settings.Normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	ctx, cancel := context.WithCancelCause(life)
	e := &engine[S, C, A]{
		id:       id,
		settings: settings,
		logger:   logger.With(zap.String("engine", id)),
		initial:  initial,
		same:     sameState[S],
		handlers: newHandlerSet[C, A](),
		ctx:      ctx,
		cancel:   cancel,
		changes:  make(chan C, settings.ChangeBuffer),
		feedback: make(chan C, settings.ChangeBuffer),
		actions:  make(chan A, settings.ActionBuffer),
		lazy:     lazy,
		done:     make(chan struct{}),
	}
	e.states = newBroadcaster[S](settings.SubscriberBuffer, func() {
		e.stats.stateOverflows.Add(1)
	})
	// a never-started engine still has to release its observers
	context.AfterFunc(ctx, e.start)
	return e
}

// ID identifies the engine in logs.
func (e *engine[S, C, A]) ID() string {
	return e.id
}

// State returns a channel replaying the latest committed state and then
// every later one. It closes when ctx ends or the engine terminates. A
// subscriber more than SubscriberBuffer states behind loses the oldest ones.
func (e *engine[S, C, A]) State(ctx context.Context) <-chan S {
	ch := e.states.subscribe(ctx)
	if e.lazy {
		e.start()
	}
	return ch
}

// Value returns the latest committed state, or the initial state before
// the first commit.
func (e *engine[S, C, A]) Value() S {
	if s, ok := e.states.value(); ok {
		return s
	}
	return e.initial
}

// Done is closed once the engine has terminated and released every
// observer.
func (e *engine[S, C, A]) Done() <-chan struct{} {
	return e.done
}

// Err returns why the engine terminated: the owner's cancellation cause, or
// the fatal error that stopped it. It is nil while the engine runs.
func (e *engine[S, C, A]) Err() error {
	select {
	case <-e.done:
		return context.Cause(e.ctx)
	default:
		return nil
	}
}

// Stats returns a snapshot of the engine counters.
func (e *engine[S, C, A]) Stats() Stats {
	return e.stats.snapshot()
}

func (e *engine[S, C, A]) submit(change C) error {
	if e.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case e.changes <- change:
		return nil
	default:
		e.stats.changeOverflows.Add(1)
		e.logger.Warn("change buffer overflow, dropping change",
			zap.String("tag", helper.TypeName(change)),
			zap.Int("capacity", cap(e.changes)),
		)
		return fmt.Errorf("%w: %s", ErrChangeOverflow, helper.TypeName(change))
	}
}

func (e *engine[S, C, A]) emitAction(seq int64, action A) {
	select {
	case e.actions <- action:
	default:
		e.stats.actionOverflows.Add(1)
		e.logger.Warn("action buffer overflow, dropping action",
			zap.Int64("seq", seq),
			zap.String("tag", helper.TypeName(action)),
			zap.Int("capacity", cap(e.actions)),
		)
	}
}

func (e *engine[S, C, A]) fail(err error) {
	e.logger.Error("siphon failed", zap.Error(err))
	e.cancel(err)
}

func (e *engine[S, C, A]) start() {
	e.startOnce.Do(func() {
		go e.run()
	})
}

func (e *engine[S, C, A]) run() {
	defer close(e.done)
	ctx := e.ctx
	if ctx.Err() != nil {
		e.states.close()
		return
	}
	e.logger.Info("siphon started",
		zap.Int("sources", len(e.sources)),
		zap.Int("change_buffer", e.settings.ChangeBuffer),
		zap.Int("action_buffer", e.settings.ActionBuffer),
	)

	effects := concurrency.New(ctx, e.logger, func(any) {
		e.stats.effectsFailed.Add(1)
	})
	partitions := handlers.NewPartitionedQueue(ctx,
		model.NewQueueConfig(e.settings.ActionBuffer, e.settings.ActionWorkers),
		e.performKeyed,
	)

	inputs := []<-chan C{e.changes, e.feedback}
	for _, src := range e.sources {
		inputs = append(inputs, src(ctx))
	}
	changes := Chain(ctx, stream.Merge(ctx, inputs...), e.changeInterceptors...)

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		e.dispatch(ctx, Chain(ctx, (<-chan A)(e.actions), e.actionInterceptors...), effects, partitions)
	}()

	committed := make(chan S)
	published := make(chan struct{})
	go func() {
		defer close(published)
		for s := range Chain(ctx, (<-chan S)(committed), e.stateInterceptors...) {
			e.states.publish(s)
		}
	}()

	if err := e.fold(ctx, changes, committed); err != nil && ctx.Err() == nil {
		e.fail(err)
	}
	close(committed)
	e.cancel(context.Canceled)

	<-dispatched
	effects.Close()
	partitions.Wait()
	<-published
	observers := e.states.subscribers()
	e.states.close()
	e.logger.Info("siphon stopped",
		zap.NamedError("cause", context.Cause(ctx)),
		zap.Int64("reductions", e.stats.reductions.Load()),
		zap.Int("observers", observers),
	)
}

// fold is the only place the state is read or written.
func (e *engine[S, C, A]) fold(ctx context.Context, in <-chan C, out chan<- S) error {
	state := e.initial
	if !stream.Send(ctx, out, state) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-in:
			if !ok {
				return fmt.Errorf("%w: change stream ended", ErrClosed)
			}
			if ctx.Err() != nil {
				return nil
			}
			effect, err := e.step(state, change)
			if err != nil {
				return err
			}
			seq := e.stats.reductions.Add(1)
			for _, action := range effect.actions {
				e.emitAction(seq, action)
			}
			next := effect.state
			if e.same(state, next) {
				continue
			}
			state = next
			if !stream.Send(ctx, out, state) {
				return nil
			}
		}
	}
}

func (e *engine[S, C, A]) step(state S, change C) (effect Effect[S, A], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ReducerPanicError{Change: change, Recovered: r}
		}
	}()
	return e.reduce(state, change)
}
