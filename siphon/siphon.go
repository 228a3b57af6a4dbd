package siphon

// Siphon is a single-reducer engine. It starts on the first State
// subscription or an explicit Start; changes submitted earlier wait in the
// change relay.
type Siphon[S, C, A any] struct {
	*engine[S, C, A]
}

// Change submits a change without blocking. It returns ErrChangeOverflow when
// the relay is full, and ErrClosed once the engine has terminated.
func (s *Siphon[S, C, A]) Change(change C) error {
	return s.submit(change)
}

// Start runs the engine without waiting for an observer.
func (s *Siphon[S, C, A]) Start() {
	s.start()
}
