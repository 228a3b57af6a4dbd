package siphon

import (
	"context"

	"github.com/on-the-ground/siphon_go/siphon/config"
	"go.uber.org/zap"
)

// Builder assembles a Siphon.
type Builder[S, C, A any] struct {
	life       context.Context
	initial    S
	hasInitial bool
	reducer    Reducer[S, C, A]
	settings   config.Settings
	logger     *zap.Logger
	same       func(prev, next S) bool
	sources    []EventSource[C]
	handlers   *handlerSet[C, A]

	changeInterceptors []Interceptor[C]
	actionInterceptors []Interceptor[A]
	stateInterceptors  []Interceptor[S]
}

// NewBuilder starts a Siphon definition with default settings.
func NewBuilder[S, C, A any]() *Builder[S, C, A] {
	return &Builder[S, C, A]{
		settings: config.Default(),
		handlers: newHandlerSet[C, A](),
	}
}

// Life binds the engine to ctx. Cancelling it tears the engine down.
func (b *Builder[S, C, A]) Life(ctx context.Context) *Builder[S, C, A] {
	b.life = ctx
	return b
}

// Initial sets the state observers see first.
func (b *Builder[S, C, A]) Initial(state S) *Builder[S, C, A] {
	b.initial, b.hasInitial = state, true
	return b
}

// Reduce sets the reducer.
func (b *Builder[S, C, A]) Reduce(r Reducer[S, C, A]) *Builder[S, C, A] {
	b.reducer = r
	return b
}

// Settings replaces the buffer and worker settings.
func (b *Builder[S, C, A]) Settings(s config.Settings) *Builder[S, C, A] {
	b.settings = s
	return b
}

// Logger sets the logger. Without one the engine logs nothing.
func (b *Builder[S, C, A]) Logger(l *zap.Logger) *Builder[S, C, A] {
	b.logger = l
	return b
}

// Distinct overrides how a reduction is judged to have produced nothing new.
func (b *Builder[S, C, A]) Distinct(same func(prev, next S) bool) *Builder[S, C, A] {
	b.same = same
	return b
}

// Source adds perpetual event sources.
func (b *Builder[S, C, A]) Source(sources ...EventSource[C]) *Builder[S, C, A] {
	b.sources = append(b.sources, sources...)
	return b
}

// Actions returns the handler registry of the Siphon being built.
func (b *Builder[S, C, A]) Actions() *Actions[C, A] {
	return &Actions[C, A]{
		onTag: b.handlers.addTag,
		onAll: func(h ActionHandler[A, C]) {
			b.handlers.addAll(acceptAny[A], h)
		},
	}
}

// InterceptChanges adds interceptors between the merge point and the reducer.
func (b *Builder[S, C, A]) InterceptChanges(is ...Interceptor[C]) *Builder[S, C, A] {
	b.changeInterceptors = append(b.changeInterceptors, is...)
	return b
}

// WatchChanges observes every change before it is reduced.
func (b *Builder[S, C, A]) WatchChanges(watcher func(C)) *Builder[S, C, A] {
	return b.InterceptChanges(Watching(watcher))
}

// InterceptActions adds interceptors between the reducer and the handlers.
func (b *Builder[S, C, A]) InterceptActions(is ...Interceptor[A]) *Builder[S, C, A] {
	b.actionInterceptors = append(b.actionInterceptors, is...)
	return b
}

// WatchActions observes every action before it is dispatched.
func (b *Builder[S, C, A]) WatchActions(watcher func(A)) *Builder[S, C, A] {
	return b.InterceptActions(Watching(watcher))
}

// InterceptState adds interceptors between the reducer and the observers.
func (b *Builder[S, C, A]) InterceptState(is ...Interceptor[S]) *Builder[S, C, A] {
	b.stateInterceptors = append(b.stateInterceptors, is...)
	return b
}

// WatchState observes every committed state.
func (b *Builder[S, C, A]) WatchState(watcher func(S)) *Builder[S, C, A] {
	return b.InterceptState(Watching(watcher))
}

// Only is Only with the builder's types filled in.
func (b *Builder[S, C, A]) Only(state S) Effect[S, A] {
	return Only[S, A](state)
}

// With is With with the builder's types filled in.
func (b *Builder[S, C, A]) With(state S, actions ...A) Effect[S, A] {
	return With(state, actions...)
}

// Build validates the definition and creates the Siphon.
func (b *Builder[S, C, A]) Build() (*Siphon[S, C, A], error) {
	if b.life == nil {
		return nil, newConfigError(ErrCodeMissingLifecycle, Tag{}, "a lifecycle context is required")
	}
	if !b.hasInitial {
		return nil, newConfigError(ErrCodeMissingInitialState, Tag{}, "an initial state is required")
	}
	if b.reducer == nil {
		return nil, newConfigError(ErrCodeMissingReducer, Tag{}, "a reducer is required")
	}
	if performsActions[A]() && b.handlers.empty() {
		return nil, newConfigError(ErrCodeMissingHandler, TagOf[A](), "actions are emitted but nothing performs them")
	}

	e := newEngine[S, C, A](b.life, b.settings, b.logger, b.initial, true)
	reducer := b.reducer
	e.reduce = func(s S, c C) (Effect[S, A], error) {
		return reducer(s, c), nil
	}
	if b.same != nil {
		e.same = b.same
	}
	e.sources = b.sources
	e.handlers = b.handlers
	e.changeInterceptors = b.changeInterceptors
	e.actionInterceptors = b.actionInterceptors
	e.stateInterceptors = b.stateInterceptors
	return &Siphon[S, C, A]{engine: e}, nil
}
