package siphon

import "sync/atomic"

// Stats is a snapshot of an engine's counters.
type Stats struct {
	Reductions      int64
	ChangeOverflows int64
	ActionOverflows int64
	StateOverflows  int64
	EffectsStarted  int64
	EffectsFailed   int64
}

type counters struct {
	reductions      atomic.Int64
	changeOverflows atomic.Int64
	actionOverflows atomic.Int64
	stateOverflows  atomic.Int64
	effectsStarted  atomic.Int64
	effectsFailed   atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Reductions:      c.reductions.Load(),
		ChangeOverflows: c.changeOverflows.Load(),
		ActionOverflows: c.actionOverflows.Load(),
		StateOverflows:  c.stateOverflows.Load(),
		EffectsStarted:  c.effectsStarted.Load(),
		EffectsFailed:   c.effectsFailed.Load(),
	}
}
