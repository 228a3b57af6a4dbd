package siphon

import (
	"context"
	"sync"
)

// broadcaster fans committed states out to subscribers. It replays the
// latest state to each new subscriber and never blocks the publisher: a
// subscriber that falls a whole buffer behind loses its oldest pending state.
type broadcaster[S any] struct {
	buffer     int
	onOverflow func()

	mu        sync.Mutex
	latest    S
	hasLatest bool
	subs      map[uint64]chan S
	nextID    uint64
	closed    bool
}

func newBroadcaster[S any](buffer int, onOverflow func()) *broadcaster[S] {
	if buffer < 1 {
		buffer = 1
	}
	return &broadcaster[S]{
		buffer:     buffer,
		onOverflow: onOverflow,
		subs:       map[uint64]chan S{},
	}
}

func (b *broadcaster[S]) publish(s S) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.latest, b.hasLatest = s, true
	for _, ch := range b.subs {
		b.offer(ch, s)
	}
}

// offer must be called with mu held; the subscriber channels have no other
// writer, so draining one slot always makes room.
func (b *broadcaster[S]) offer(ch chan S, s S) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
		b.onOverflow()
	default:
	}
	ch <- s
}

// subscribe registers a subscriber until ctx ends. After close it returns a
// channel holding the last state, already closed.
func (b *broadcaster[S]) subscribe(ctx context.Context) <-chan S {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan S, b.buffer)
	if b.hasLatest {
		ch <- b.latest
	}
	if b.closed {
		close(ch)
		return ch
	}
	if ctx.Err() != nil {
		close(ch)
		return ch
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	context.AfterFunc(ctx, func() {
		b.unsubscribe(id)
	})
	return ch
}

func (b *broadcaster[S]) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *broadcaster[S]) value() (S, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLatest
}

func (b *broadcaster[S]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *broadcaster[S]) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
