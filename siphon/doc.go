// Package siphon provides a unidirectional state engine.
//
// A Siphon owns one State value. Changes arrive concurrently from direct
// submissions, from perpetual event sources and from the side effects the
// engine itself performs. They are merged into a single stream that is folded over the State by a pure reducer, one change at a
// time. A reduction yields an Effect: the next State plus zero or more
// Actions, which are performed asynchronously by registered handlers whose
// resulting Changes flow back into the same merge point.
//
//	                 ┌──────────── event sources ───────────┐
//	Change(c) ──► relay ─┐                                  ▼
//	                     ├─► merge ─► interceptors ─► reduce ─► state interceptors ─► observers
//	      feedback ──────┘                              │
//	         ▲                                          ▼
//	         └──────── handlers ◄── interceptors ◄── action relay
//
// # Guarantees
//
//   - Reductions never overlap; serialization is structural (a single fold
//     goroutine), not lock based.
//   - No ordering is imposed between sources. Order within one source is kept.
//   - Relays are bounded. On saturation the newest item is dropped and the
//     overflow is reported; producers never block and the engine never crashes.
//   - Cancelling the owning context stops every source and in-flight effect,
//     prevents further reductions, and closes every observer channel.
//
// # Composite
//
// A Composite shares one State between independently written Delegates.
// Each delegate registers reducers keyed by the runtime type of the change
// they accept, plus its own event sources and action handlers. After Compose
// the registry is frozen and every change is routed by its type; a change
// nobody registered for is a fatal configuration error.
//
// Example:
//
//	b := siphon.NewBuilder[Counter, Change, Action]().
//	    Life(ctx).
//	    Initial(Counter{}).
//	    Reduce(reduce)
//	siphon.Perform(b.Actions(), save)
//	s, err := b.Build()
//	if err != nil {
//	    return err
//	}
//	states := s.State(ctx)
//	_ = s.Change(Inc{})
package siphon
