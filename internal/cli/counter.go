package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/on-the-ground/siphon_go/siphon"
	"github.com/spf13/cobra"
)

type counterChange interface{ isCounterChange() }

type incChange struct{}

type resetChange struct{}

func (incChange) isCounterChange()   {}
func (resetChange) isCounterChange() {}

// tally numbers every step so that each reduction is observable.
type tally struct {
	Step  int
	Count int
}

func reduceTally(t tally, c counterChange) siphon.Effect[tally, siphon.NoAction] {
	t.Step++
	switch c.(type) {
	case incChange:
		t.Count++
	case resetChange:
		t.Count = 0
	}
	return siphon.Only[tally, siphon.NoAction](t)
}

func parseCounterChange(arg string) (counterChange, error) {
	switch strings.ToLower(arg) {
	case "inc":
		return incChange{}, nil
	case "reset":
		return resetChange{}, nil
	default:
		return nil, fmt.Errorf("unknown change %q: must be inc or reset", arg)
	}
}

// NewCounterCommand creates the counter command.
func NewCounterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counter <inc|reset>...",
		Short: "Fold changes into a counter and print every state",
		Long: `Submit the given changes to a single-reducer siphon and print each
committed state in order.

Example:
  siphon counter inc inc reset inc`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounter(cmd, rootOpts, args)
		},
	}
}

func runCounter(cmd *cobra.Command, opts *RootOptions, args []string) error {
	changes := make([]counterChange, len(args))
	for i, arg := range args {
		c, err := parseCounterChange(arg)
		if err != nil {
			return err
		}
		changes[i] = c
	}

	settings, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	settings.ChangeBuffer = max(settings.ChangeBuffer, len(changes))
	settings.SubscriberBuffer = max(settings.SubscriberBuffer, len(changes)+1)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := siphon.NewBuilder[tally, counterChange, siphon.NoAction]().
		Life(ctx).
		Initial(tally{}).
		Settings(settings).
		Logger(logger).
		Reduce(reduceTally).
		Build()
	if err != nil {
		return err
	}
	for _, c := range changes {
		if err := s.Change(c); err != nil {
			return err
		}
	}

	states := s.State(ctx)
	out := cmd.OutOrStdout()
	for seen := 0; seen <= len(changes); seen++ {
		t, ok := <-states
		if !ok {
			return fmt.Errorf("counter stopped early: %w", s.Err())
		}
		fmt.Fprintf(out, "step=%d count=%d\n", t.Step, t.Count)
	}
	return nil
}
