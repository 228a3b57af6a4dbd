package demo

import (
	"context"
	"time"

	"github.com/on-the-ground/siphon_go/siphon"
	"github.com/on-the-ground/siphon_go/siphon/stream"
)

type countdownChange interface{ isCountdownChange() }

type tick struct{}

type resetElapsed struct{}

func (tick) isCountdownChange()         {}
func (resetElapsed) isCountdownChange() {}

// Countdown advances State.Elapsed on every tick of its clock.
type Countdown struct {
	interval time.Duration
}

// NewCountdown ticks every interval.
func NewCountdown(interval time.Duration) *Countdown {
	return &Countdown{interval: interval}
}

func (d *Countdown) Register(c *siphon.Composite[State]) {
	siphon.RegisterDelegate(c, func(dg *siphon.Delegate[State, countdownChange, siphon.NoAction]) {
		siphon.On(dg, func(s State, _ tick) siphon.Effect[State, siphon.NoAction] {
			s.Elapsed += d.interval
			return dg.Only(s)
		})
		siphon.On(dg, func(s State, _ resetElapsed) siphon.Effect[State, siphon.NoAction] {
			s.Elapsed = 0
			return dg.Only(s)
		})
		dg.Source(func(ctx context.Context) <-chan countdownChange {
			return stream.Ticker(ctx, d.interval, func(time.Time) countdownChange { return tick{} })
		})
	})
}

func (d *Countdown) OnEvent(_ context.Context, c *siphon.Composite[State], e Event) (bool, error) {
	if e != Reset {
		return false, nil
	}
	return true, c.Change(resetElapsed{})
}
