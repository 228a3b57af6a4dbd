package siphon

import (
	"context"

	"github.com/on-the-ground/siphon_go/siphon/stream"
)

// NoAction is the action type of delegates that perform no work. It has no
// implementations.
type NoAction interface {
	noAction()
}

type taggedHandler struct {
	tag    Tag
	handle ActionHandler[any, any]
}

// Delegate declares one feature's slice of a Composite: reducers for its own
// change types C, handlers for its own action types A, and event sources.
// It is only valid inside the register function given to RegisterDelegate.
type Delegate[S, C, A any] struct {
	reducers    map[Tag]func(S, any) Effect[S, any]
	order       []Tag
	tagHandlers []taggedHandler
	allHandlers []catchAll[any, any]
	sources     []EventSource[any]

	changeInterceptors []Interceptor[any]
	actionInterceptors []Interceptor[any]
	stateInterceptors  []Interceptor[S]
}

func newDelegate[S, C, A any]() *Delegate[S, C, A] {
	return &Delegate[S, C, A]{reducers: map[Tag]func(S, any) Effect[S, any]{}}
}

// On registers the reducer for changes whose dynamic type is X. X must be a
// concrete type belonging to the delegate's change type C.
func On[S, C, A, X any](d *Delegate[S, C, A], r func(state S, change X) Effect[S, A]) *Delegate[S, C, A] {
	tag := TagOf[X]()
	if tag.isInterface() {
		panic(newConfigError(ErrCodeInterfaceTag, tag, "changes are matched by concrete type"))
	}
	if !belongsTo[X, C]() {
		panic(newConfigError(ErrCodeForeignType, tag, "change type is not a %s", TagOf[C]()))
	}
	if _, ok := d.reducers[tag]; ok {
		panic(newConfigError(ErrCodeDuplicateReducer, tag, "the delegate already reduces this change"))
	}
	d.reducers[tag] = func(state S, change any) Effect[S, any] {
		return eraseActions(r(state, change.(X)))
	}
	d.order = append(d.order, tag)
	return d
}

// Actions returns the delegate's handler registry.
func (d *Delegate[S, C, A]) Actions() *Actions[C, A] {
	return &Actions[C, A]{
		onTag: func(tag Tag, h ActionHandler[A, C]) {
			for _, th := range d.tagHandlers {
				if th.tag == tag {
					panic(newConfigError(ErrCodeDuplicateHandler, tag, "the delegate already performs this action"))
				}
			}
			d.tagHandlers = append(d.tagHandlers, taggedHandler{tag: tag, handle: eraseHandler(h)})
		},
		onAll: func(h ActionHandler[A, C]) {
			d.allHandlers = append(d.allHandlers, catchAll[any, any]{
				accepts: func(a any) bool {
					_, ok := a.(A)
					return ok
				},
				handle: eraseHandler(h),
			})
		},
	}
}

// Source adds event sources producing the delegate's changes.
func (d *Delegate[S, C, A]) Source(sources ...EventSource[C]) *Delegate[S, C, A] {
	for _, src := range sources {
		d.sources = append(d.sources, func(ctx context.Context) <-chan any {
			return stream.Map(ctx, src(ctx), func(c C) any { return c })
		})
	}
	return d
}

// InterceptChanges adds interceptors over the composite's change stream.
func (d *Delegate[S, C, A]) InterceptChanges(is ...Interceptor[any]) *Delegate[S, C, A] {
	d.changeInterceptors = append(d.changeInterceptors, is...)
	return d
}

// WatchChanges observes the changes of type C.
func (d *Delegate[S, C, A]) WatchChanges(watcher func(C)) *Delegate[S, C, A] {
	return d.InterceptChanges(WatchingOnly[any](watcher))
}

// InterceptActions adds interceptors over the composite's action stream.
func (d *Delegate[S, C, A]) InterceptActions(is ...Interceptor[any]) *Delegate[S, C, A] {
	d.actionInterceptors = append(d.actionInterceptors, is...)
	return d
}

// WatchActions observes the actions of type A.
func (d *Delegate[S, C, A]) WatchActions(watcher func(A)) *Delegate[S, C, A] {
	return d.InterceptActions(WatchingOnly[any](watcher))
}

// InterceptState adds state interceptors.
func (d *Delegate[S, C, A]) InterceptState(is ...Interceptor[S]) *Delegate[S, C, A] {
	d.stateInterceptors = append(d.stateInterceptors, is...)
	return d
}

// WatchState observes every committed state.
func (d *Delegate[S, C, A]) WatchState(watcher func(S)) *Delegate[S, C, A] {
	return d.InterceptState(Watching(watcher))
}

// Only is Only with the delegate's types filled in.
func (d *Delegate[S, C, A]) Only(state S) Effect[S, A] {
	return Only[S, A](state)
}

// With is With with the delegate's types filled in.
func (d *Delegate[S, C, A]) With(state S, actions ...A) Effect[S, A] {
	return With(state, actions...)
}

func eraseHandler[A, C any](h ActionHandler[A, C]) ActionHandler[any, any] {
	return func(ctx context.Context, action any) <-chan any {
		out := h(ctx, action.(A))
		if out == nil {
			return nil
		}
		return stream.Map(ctx, out, func(c C) any { return c })
	}
}
