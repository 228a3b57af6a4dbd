package demo

import (
	"context"
	"errors"
	"fmt"

	"github.com/on-the-ground/siphon_go/siphon"
	"github.com/on-the-ground/siphon_go/siphon/config"
	"github.com/on-the-ground/siphon_go/siphon/history"
	siphonlog "github.com/on-the-ground/siphon_go/siphon/log"
	"github.com/on-the-ground/siphon_go/siphon/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrUnhandledEvent is returned for an event no delegate accepts.
var ErrUnhandledEvent = errors.New("unhandled event")

// Options configures an App.
type Options struct {
	Settings config.Settings
	Logger   *zap.Logger

	// Tracer records spans at every seam when set.
	Tracer trace.Tracer

	// HistorySize is the number of committed states kept for inspection.
	HistorySize int
}

// App is the composite shared by the delegates.
type App struct {
	composite *siphon.Composite[State]
	delegates []Delegate
	history   *history.Recorder[State]
}

// NewApp registers delegates in order, composes, and starts the app.
func NewApp(ctx context.Context, opts Options, delegates ...Delegate) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.HistorySize
	if size < 1 {
		size = 64
	}
	rec := history.New[State](size)

	b := siphon.NewCompositeBuilder[State]().
		Life(ctx).
		Initial(InitialState()).
		Settings(opts.Settings).
		Logger(logger).
		InterceptChanges(siphonlog.Changes[any](logger)).
		InterceptActions(siphonlog.Actions[any](logger)).
		InterceptState(siphonlog.States[State](logger), rec.Interceptor())
	if opts.Tracer != nil {
		b.InterceptChanges(tracing.Changes[any](opts.Tracer)).
			InterceptActions(tracing.Actions[any](opts.Tracer)).
			InterceptState(tracing.States[State](opts.Tracer))
	}
	c, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}

	for _, d := range delegates {
		d.Register(c)
	}
	c.Compose()
	return &App{composite: c, delegates: delegates, history: rec}, nil
}

// OnEvent hands e to the first delegate that accepts it.
func (a *App) OnEvent(ctx context.Context, e Event) error {
	for _, d := range a.delegates {
		handled, err := d.OnEvent(ctx, a.composite, e)
		if err != nil {
			return fmt.Errorf("%s: %w", e, err)
		}
		if handled {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnhandledEvent, e)
}

// State subscribes to the shared state.
func (a *App) State(ctx context.Context) <-chan State {
	return a.composite.State(ctx)
}

// Value returns the latest state.
func (a *App) Value() State {
	return a.composite.Value()
}

// History returns the recorded states, oldest first.
func (a *App) History() []history.Entry[State] {
	return a.history.Entries()
}

// Done is closed once the app has stopped.
func (a *App) Done() <-chan struct{} {
	return a.composite.Done()
}

// Err reports why the app stopped.
func (a *App) Err() error {
	return a.composite.Err()
}

// Stats exposes the engine counters.
func (a *App) Stats() siphon.Stats {
	return a.composite.Stats()
}
