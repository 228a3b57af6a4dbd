package siphon

import "slices"

// Effect is the outcome of one reduction: the next state and the actions to
// perform. The state is always set; the action list may be empty.
type Effect[S, A any] struct {
	state   S
	actions []A
}

// Only returns an Effect carrying no action.
func Only[S, A any](state S) Effect[S, A] {
	return Effect[S, A]{state: state}
}

// With returns an Effect carrying the given actions in order.
func With[S, A any](state S, actions ...A) Effect[S, A] {
	return Effect[S, A]{state: state, actions: slices.Clone(actions)}
}

// State returns the next state.
func (e Effect[S, A]) State() S {
	return e.state
}

// Actions returns a copy of the actions, in emission order.
func (e Effect[S, A]) Actions() []A {
	return slices.Clone(e.actions)
}

// HasActions reports whether the effect requests any work.
func (e Effect[S, A]) HasActions() bool {
	return len(e.actions) > 0
}

// Plus returns a new Effect with action appended. The receiver is left
// untouched, so effects can be shared between branches safely.
func (e Effect[S, A]) Plus(action A) Effect[S, A] {
	return Effect[S, A]{state: e.state, actions: append(slices.Clip(e.actions), action)}
}

// PlusAll appends every action in order.
func (e Effect[S, A]) PlusAll(actions ...A) Effect[S, A] {
	return Effect[S, A]{state: e.state, actions: append(slices.Clip(e.actions), actions...)}
}

// Reducer folds one change into the state.
type Reducer[S, C, A any] func(state S, change C) Effect[S, A]

func eraseActions[S, A any](e Effect[S, A]) Effect[S, any] {
	erased := make([]any, len(e.actions))
	for i, a := range e.actions {
		erased[i] = a
	}
	return Effect[S, any]{state: e.state, actions: erased}
}
