package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/on-the-ground/siphon_go/internal/demo"
	"github.com/on-the-ground/siphon_go/siphon/tracing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Duration   time.Duration
	Interval   time.Duration
	ClickAt    time.Duration
	ResetAt    time.Duration
	LatencyMin time.Duration
	LatencyMax time.Duration
	CacheTTL   time.Duration
	Seed       uint64
	History    bool
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the countdown and users composite",
		Long: `Run the composite sample app for a while and print every state.

A countdown delegate ticks on its own. A users delegate fetches two random
users from an in-memory directory when the button is clicked.

Example:
  siphon demo --duration 5s --click-at 1s --reset-at 3s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Duration, "duration", 5*time.Second, "how long to run")
	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Second, "countdown tick interval")
	cmd.Flags().DurationVar(&opts.ClickAt, "click-at", time.Second, "when to click get users (negative: never)")
	cmd.Flags().DurationVar(&opts.ResetAt, "reset-at", -1, "when to reset the countdown (negative: never)")
	cmd.Flags().DurationVar(&opts.LatencyMin, "latency-min", time.Second, "minimum backend latency")
	cmd.Flags().DurationVar(&opts.LatencyMax, "latency-max", 2*time.Second, "maximum backend latency")
	cmd.Flags().DurationVar(&opts.CacheTTL, "cache-ttl", 10*time.Second, "how long fetched users are cached")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for the backend (0: random)")
	cmd.Flags().BoolVar(&opts.History, "history", false, "print how long each state was held")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *DemoOptions) error {
	settings, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdown, err := tracing.Setup(cmd.Context(), "siphon-demo", settings.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	dirOpts := []demo.DirectoryOption{demo.WithLatency(opts.LatencyMin, opts.LatencyMax)}
	if opts.Seed != 0 {
		dirOpts = append(dirOpts, demo.WithSeed(opts.Seed))
	}
	directory, err := demo.NewDirectory(demo.DefaultNames, dirOpts...)
	if err != nil {
		return err
	}
	backend, err := demo.NewCachedBackend(directory, opts.CacheTTL, 3, 100*time.Millisecond)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Duration)
	defer cancel()

	appOpts := demo.Options{Settings: settings, Logger: logger}
	if settings.OTelEndpoint != "" {
		appOpts.Tracer = tracing.Tracer()
	}
	app, err := demo.NewApp(ctx, appOpts,
		demo.NewCountdown(opts.Interval),
		demo.NewUsers(backend, logger),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for s := range app.State(gctx) {
			fmt.Fprintln(out, s)
		}
		return nil
	})
	g.Go(func() error {
		return script(gctx, app, logger, []scheduled{
			{at: opts.ClickAt, event: demo.ClickGetUsers},
			{at: opts.ResetAt, event: demo.Reset},
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	<-app.Done()
	if err := app.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	if opts.History {
		for _, e := range app.History() {
			fmt.Fprintf(out, "#%d held %s: %s\n", e.Seq, e.TimeSpan().Duration().Round(time.Millisecond), e.State)
		}
	}
	return nil
}

type scheduled struct {
	at    time.Duration
	event demo.Event
}

// script fires each event at its offset. Negative offsets are skipped.
func script(ctx context.Context, app *demo.App, logger *zap.Logger, events []scheduled) error {
	start := time.Now()
	slices.SortStableFunc(events, func(a, b scheduled) int {
		return cmp.Compare(a.at, b.at)
	})
	for _, ev := range events {
		if ev.at < 0 {
			continue
		}
		timer := time.NewTimer(time.Until(start.Add(ev.at)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		logger.Info("event", zap.Stringer("event", ev.event))
		if err := app.OnEvent(ctx, ev.event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}
