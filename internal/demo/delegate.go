package demo

import (
	"context"

	"github.com/on-the-ground/siphon_go/siphon"
)

// Delegate is one feature of the app.
type Delegate interface {
	// Register declares the delegate's reducers, sources and handlers.
	Register(c *siphon.Composite[State])

	// OnEvent turns a user interaction into changes. It reports false when
	// the event belongs to another delegate.
	OnEvent(ctx context.Context, c *siphon.Composite[State], e Event) (bool, error)
}
