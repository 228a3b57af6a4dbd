// Package history keeps a bounded record of the states an engine committed
// and the period each one was current.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/on-the-ground/siphon_go/siphon"
	"github.com/rickb777/date/v2/timespan"
)

type TimeSpan = timespan.TimeSpan

// TimeBounded is implemented by values that were valid over a period.
type TimeBounded interface {
	TimeSpan() TimeSpan
}

// Entry is one committed state.
type Entry[S any] struct {
	Seq   int64
	State S
	span  TimeSpan
}

// TimeSpan is the period from this commit to the next one, or to the time
// the entry was read for the latest state.
func (e Entry[S]) TimeSpan() TimeSpan {
	return e.span
}

type commit[S any] struct {
	seq   int64
	state S
	at    time.Time
}

// Recorder remembers the last capacity committed states.
type Recorder[S any] struct {
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	seq     int64
	commits []commit[S]
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a recorder keeping at most capacity states.
func New[S any](capacity int, opts ...Option) *Recorder[S] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Recorder[S]{
		capacity: capacity,
		now:      o.now,
		commits:  make([]commit[S], 0, capacity),
	}
}

// Interceptor records every state passing the state seam.
func (r *Recorder[S]) Interceptor() siphon.Interceptor[S] {
	return siphon.Watching(r.Record)
}

// Record appends s, evicting the oldest state when full.
func (r *Recorder[S]) Record(s S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if len(r.commits) == r.capacity {
		copy(r.commits, r.commits[1:])
		r.commits = r.commits[:len(r.commits)-1]
	}
	r.commits = append(r.commits, commit[S]{seq: r.seq, state: s, at: r.now()})
}

// Len reports the number of states kept.
func (r *Recorder[S]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commits)
}

// Entries returns the kept states, oldest first.
func (r *Recorder[S]) Entries() []Entry[S] {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	res := make([]Entry[S], len(r.commits))
	for i, c := range r.commits {
		end := now
		if i+1 < len(r.commits) {
			end = r.commits[i+1].at
		}
		res[i] = Entry[S]{Seq: c.seq, State: c.state, span: timespan.BetweenTimes(c.at, end)}
	}
	return res
}

// At returns the state that was current at t. It reports false when t
// precedes every kept state.
func (r *Recorder[S]) At(t time.Time) (S, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := sort.Search(len(r.commits), func(i int) bool {
		return r.commits[i].at.After(t)
	})
	if i == 0 {
		var zero S
		return zero, false
	}
	return r.commits[i-1].state, true
}
