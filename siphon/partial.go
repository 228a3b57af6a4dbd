package siphon

// Unexpected reports a change that makes no sense in the current state. It
// panics with an UnexpectedChangeError, which terminates the engine with a
// ReducerPanicError wrapping it.
func Unexpected[S, A any](state S, change any) Effect[S, A] {
	panic(&UnexpectedChangeError{State: state, Change: change})
}

// WhenState runs fn when the state's dynamic type is W, and leaves the state
// unchanged otherwise.
func WhenState[W, S, A any](state S, fn func(W) Effect[S, A]) Effect[S, A] {
	if w, ok := any(state).(W); ok {
		return fn(w)
	}
	return Only[S, A](state)
}

// RequireState runs fn when the state's dynamic type is W, and treats change
// as Unexpected otherwise.
func RequireState[W, S, A any](state S, change any, fn func(W) Effect[S, A]) Effect[S, A] {
	if w, ok := any(state).(W); ok {
		return fn(w)
	}
	return Unexpected[S, A](state, change)
}

// Dispatch folds the state through several partial reducers, so delegates
// sharing one change can each update their own part of the state. Actions
// are concatenated in partial order.
func Dispatch[S, A, P any](state S, partials []P, fn func(partial P, state S) Effect[S, A]) Effect[S, A] {
	var actions []A
	for _, p := range partials {
		effect := fn(p, state)
		state = effect.state
		actions = append(actions, effect.actions...)
	}
	return Effect[S, A]{state: state, actions: actions}
}

// DispatchStateOnly is Dispatch for partial reducers that never act.
func DispatchStateOnly[S, P any](state S, partials []P, fn func(partial P, state S) S) S {
	for _, p := range partials {
		state = fn(p, state)
	}
	return state
}
