package siphon

import (
	"context"
	"sync"

	"github.com/on-the-ground/siphon_go/siphon/config"
	"go.uber.org/zap"
)

// Composite is an engine whose reducer is assembled from delegates. Changes
// are routed to the reducer registered for their runtime type. Register
// every delegate, then call Compose exactly once.
type Composite[S any] struct {
	*engine[S, any, any]

	mu        sync.Mutex
	composed  bool
	reducers  map[Tag]func(S, any) Effect[S, any]
	delegates int
}

// Change submits a change without blocking. Before Compose it returns a
// ConfigError with code NOT_COMPOSED.
func (c *Composite[S]) Change(change any) error {
	if !c.isComposed() {
		return newConfigError(ErrCodeNotComposed, TagFor(change), "changes are accepted only after Compose")
	}
	return c.submit(change)
}

// Compose freezes the registry and starts the engine. Calling it twice panics.
func (c *Composite[S]) Compose() {
	c.mu.Lock()
	if c.composed {
		c.mu.Unlock()
		panic(newConfigError(ErrCodeComposedTwice, Tag{}, "Compose may be called once"))
	}
	c.composed = true
	c.mu.Unlock()

	c.logger.Info("composite composed",
		zap.Int("delegates", c.delegates),
		zap.Int("reducers", len(c.reducers)),
	)
	c.start()
}

func (c *Composite[S]) isComposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.composed
}

func (c *Composite[S]) route(state S, change any) (Effect[S, any], error) {
	tag := TagFor(change)
	r, ok := c.reducers[tag]
	if !ok {
		return Effect[S, any]{}, newConfigError(ErrCodeUnmatchedChange, tag, "no reducer is registered for change")
	}
	return r(state, change), nil
}

// RegisterDelegate runs register against a fresh delegate and merges what
// it declared into c. It panics with a ConfigError after Compose, when a
// change or action type is already claimed by another delegate, or when a
// delegate declaring an action type other than NoAction performs nothing.
func RegisterDelegate[S, C, A any](c *Composite[S], register func(d *Delegate[S, C, A])) {
	if c.isComposed() {
		panic(newConfigError(ErrCodeRegisterAfterCompose, TagOf[C](), "delegates must register before Compose"))
	}
	d := newDelegate[S, C, A]()
	register(d)
	if performsActions[A]() && len(d.tagHandlers) == 0 && len(d.allHandlers) == 0 {
		panic(newConfigError(ErrCodeMissingHandler, TagOf[A](), "the delegate emits actions but performs none"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.composed {
		panic(newConfigError(ErrCodeRegisterAfterCompose, TagOf[C](), "delegates must register before Compose"))
	}
	for _, tag := range d.order {
		if _, ok := c.reducers[tag]; ok {
			panic(newConfigError(ErrCodeDuplicateReducer, tag, "another delegate already reduces this change"))
		}
	}
	for _, h := range d.tagHandlers {
		if _, ok := c.handlers.byTag[h.tag]; ok {
			panic(newConfigError(ErrCodeDuplicateHandler, h.tag, "another delegate already performs this action"))
		}
	}

	for _, tag := range d.order {
		c.reducers[tag] = d.reducers[tag]
	}
	for _, h := range d.tagHandlers {
		c.handlers.addTag(h.tag, h.handle)
	}
	for _, h := range d.allHandlers {
		c.handlers.addAll(h.accepts, h.handle)
	}
	c.sources = append(c.sources, d.sources...)
	c.changeInterceptors = append(c.changeInterceptors, d.changeInterceptors...)
	c.actionInterceptors = append(c.actionInterceptors, d.actionInterceptors...)
	c.stateInterceptors = append(c.stateInterceptors, d.stateInterceptors...)
	c.delegates++
}

// CompositeBuilder assembles a Composite.
type CompositeBuilder[S any] struct {
	life       context.Context
	initial    S
	hasInitial bool
	settings   config.Settings
	logger     *zap.Logger
	same       func(prev, next S) bool

	changeInterceptors []Interceptor[any]
	actionInterceptors []Interceptor[any]
	stateInterceptors  []Interceptor[S]
}

// NewCompositeBuilder starts a Composite definition with default settings.
func NewCompositeBuilder[S any]() *CompositeBuilder[S] {
	return &CompositeBuilder[S]{settings: config.Default()}
}

// Life binds the engine to ctx.
func (b *CompositeBuilder[S]) Life(ctx context.Context) *CompositeBuilder[S] {
	b.life = ctx
	return b
}

// Initial sets the state observers see first.
func (b *CompositeBuilder[S]) Initial(state S) *CompositeBuilder[S] {
	b.initial, b.hasInitial = state, true
	return b
}

// Settings replaces the buffer and worker settings.
func (b *CompositeBuilder[S]) Settings(s config.Settings) *CompositeBuilder[S] {
	b.settings = s
	return b
}

// Logger sets the logger.
func (b *CompositeBuilder[S]) Logger(l *zap.Logger) *CompositeBuilder[S] {
	b.logger = l
	return b
}

// Distinct overrides how a reduction is judged to have produced nothing new.
func (b *CompositeBuilder[S]) Distinct(same func(prev, next S) bool) *CompositeBuilder[S] {
	b.same = same
	return b
}

// InterceptChanges adds interceptors that see the changes of every delegate.
// They run before the interceptors delegates add.
func (b *CompositeBuilder[S]) InterceptChanges(is ...Interceptor[any]) *CompositeBuilder[S] {
	b.changeInterceptors = append(b.changeInterceptors, is...)
	return b
}

// WatchChanges observes every change.
func (b *CompositeBuilder[S]) WatchChanges(watcher func(any)) *CompositeBuilder[S] {
	return b.InterceptChanges(Watching(watcher))
}

// InterceptActions adds interceptors that see the actions of every delegate.
func (b *CompositeBuilder[S]) InterceptActions(is ...Interceptor[any]) *CompositeBuilder[S] {
	b.actionInterceptors = append(b.actionInterceptors, is...)
	return b
}

// WatchActions observes every action.
func (b *CompositeBuilder[S]) WatchActions(watcher func(any)) *CompositeBuilder[S] {
	return b.InterceptActions(Watching(watcher))
}

// InterceptState adds state interceptors.
func (b *CompositeBuilder[S]) InterceptState(is ...Interceptor[S]) *CompositeBuilder[S] {
	b.stateInterceptors = append(b.stateInterceptors, is...)
	return b
}

// WatchState observes every committed state.
func (b *CompositeBuilder[S]) WatchState(watcher func(S)) *CompositeBuilder[S] {
	return b.InterceptState(Watching(watcher))
}

// Build validates the definition and creates an empty Composite.
func (b *CompositeBuilder[S]) Build() (*Composite[S], error) {
	if b.life == nil {
		return nil, newConfigError(ErrCodeMissingLifecycle, Tag{}, "a lifecycle context is required")
	}
	if !b.hasInitial {
		return nil, newConfigError(ErrCodeMissingInitialState, Tag{}, "an initial state is required")
	}

	c := &Composite[S]{reducers: map[Tag]func(S, any) Effect[S, any]{}}
	e := newEngine[S, any, any](b.life, b.settings, b.logger, b.initial, false)
	e.reduce = c.route
	if b.same != nil {
		e.same = b.same
	}
	e.changeInterceptors = b.changeInterceptors
	e.actionInterceptors = b.actionInterceptors
	e.stateInterceptors = b.stateInterceptors
	c.engine = e
	return c, nil
}
