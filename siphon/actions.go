package siphon

import (
	"context"

	"github.com/on-the-ground/siphon_go/siphon/stream"
)

// ActionHandler performs one action and streams back the changes it
// produces. It must stop sending once ctx ends. A nil channel means the
// action yields no change.
type ActionHandler[A, C any] func(ctx context.Context, action A) <-chan C

// Actions registers the handlers an engine dispatches actions to. It is
// obtained from a Builder or a Delegate; see Perform.
type Actions[C, A any] struct {
	onTag func(tag Tag, h ActionHandler[A, C])
	onAll func(h ActionHandler[A, C])
}

// PerformAll registers a handler receiving every action of the owner's
// action type. It runs alongside any type-specific handler.
func (a *Actions[C, A]) PerformAll(h ActionHandler[A, C]) *Actions[C, A] {
	a.onAll(h)
	return a
}

// Perform registers h for actions whose dynamic type is X. X must be a
// concrete type belonging to A; registering the same X twice panics with a
// ConfigError.
func Perform[C, A, X any](a *Actions[C, A], h func(ctx context.Context, action X) <-chan C) *Actions[C, A] {
	tag := TagOf[X]()
	if tag.isInterface() {
		panic(newConfigError(ErrCodeInterfaceTag, tag, "actions are matched by concrete type"))
	}
	if !belongsTo[X, A]() {
		panic(newConfigError(ErrCodeForeignType, tag, "action type is not a %s", TagOf[A]()))
	}
	a.onTag(tag, func(ctx context.Context, action A) <-chan C {
		return h(ctx, any(action).(X))
	})
	return a
}

// Yield is a convenience for handlers producing a fixed sequence of changes.
func Yield[C any](ctx context.Context, changes ...C) <-chan C {
	return stream.Of(ctx, changes...)
}

type catchAll[C, A any] struct {
	accepts func(A) bool
	handle  ActionHandler[A, C]
}

// handlerSet resolves an action to every handler that accepts it.
type handlerSet[C, A any] struct {
	byTag map[Tag]ActionHandler[A, C]
	all   []catchAll[C, A]
}

func newHandlerSet[C, A any]() *handlerSet[C, A] {
	return &handlerSet[C, A]{byTag: map[Tag]ActionHandler[A, C]{}}
}

func (hs *handlerSet[C, A]) addTag(tag Tag, h ActionHandler[A, C]) {
	if _, ok := hs.byTag[tag]; ok {
		panic(newConfigError(ErrCodeDuplicateHandler, tag, "a handler is already registered"))
	}
	hs.byTag[tag] = h
}

func (hs *handlerSet[C, A]) addAll(accepts func(A) bool, h ActionHandler[A, C]) {
	hs.all = append(hs.all, catchAll[C, A]{accepts: accepts, handle: h})
}

func (hs *handlerSet[C, A]) empty() bool {
	return len(hs.byTag) == 0 && len(hs.all) == 0
}

func (hs *handlerSet[C, A]) resolve(action A) ([]ActionHandler[A, C], error) {
	var res []ActionHandler[A, C]
	tag := TagFor(action)
	if h, ok := hs.byTag[tag]; ok {
		res = append(res, h)
	}
	for _, ca := range hs.all {
		if ca.accepts(action) {
			res = append(res, ca.handle)
		}
	}
	if len(res) == 0 {
		return nil, newConfigError(ErrCodeUnhandledAction, tag, "no handler is registered for action")
	}
	return res, nil
}

func acceptAny[A any](A) bool { return true }

// performsActions reports whether A can carry actions at all.
func performsActions[A any]() bool {
	return TagOf[A]() != TagOf[NoAction]()
}
