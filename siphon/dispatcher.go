package siphon

import (
	"context"
	"errors"

	"github.com/on-the-ground/siphon_go/shared/helper"
	"github.com/on-the-ground/siphon_go/siphon/concurrency"
	"github.com/on-the-ground/siphon_go/siphon/internal/handlers"
	"github.com/on-the-ground/siphon_go/siphon/internal/model"
	"github.com/on-the-ground/siphon_go/siphon/stream"
	"go.uber.org/zap"
)

type keyedAction[C, A any] struct {
	key      string
	action   A
	handlers []ActionHandler[A, C]
}

func (k keyedAction[C, A]) PartitionKey() string {
	return k.key
}

func (e *engine[S, C, A]) dispatch(
	ctx context.Context,
	in <-chan A,
	effects *concurrency.Supervisor,
	partitions *handlers.PartitionedQueue[keyedAction[C, A]],
) {
	for {
		select {
		case <-ctx.Done():
			return
		case action, ok := <-in:
			if !ok {
				return
			}
			hs, err := e.handlers.resolve(action)
			if err != nil {
				e.fail(err)
				return
			}
			if p, ok := any(action).(model.Partitionable); ok {
				err := partitions.TryEnqueue(keyedAction[C, A]{key: p.PartitionKey(), action: action, handlers: hs})
				switch {
				case err == nil:
					e.stats.effectsStarted.Add(1)
				case errors.Is(err, handlers.ErrPartitionFull):
					e.partitionOverflow(p.PartitionKey(), action)
				default:
					return
				}
				continue
			}
			started := effects.Go(func(ctx context.Context) {
				e.perform(ctx, action, hs)
			})
			if !started {
				return
			}
			e.stats.effectsStarted.Add(1)
		}
	}
}

// partitionOverflow drops an action whose partition is saturated, the same
// way a full action relay does.
func (e *engine[S, C, A]) partitionOverflow(key string, action A) {
	e.stats.actionOverflows.Add(1)
	e.logger.Warn("partition buffer overflow, dropping action",
		zap.String("key", key),
		zap.String("tag", helper.TypeName(action)),
		zap.Int("capacity", e.settings.ActionBuffer),
	)
}

func (e *engine[S, C, A]) performKeyed(ctx context.Context, job keyedAction[C, A]) {
	defer func() {
		if r := recover(); r != nil {
			e.effectFailed(r)
		}
	}()
	e.perform(ctx, job.action, job.handlers)
}

// perform runs the handlers for one action and feeds their changes back.
// Changes arriving after cancellation are discarded.
func (e *engine[S, C, A]) perform(ctx context.Context, action A, hs []ActionHandler[A, C]) {
	outs := make([]<-chan C, 0, len(hs))
	for _, h := range hs {
		outs = append(outs, h(ctx, action))
	}
	results := outs[0]
	if len(outs) > 1 {
		results = stream.Merge(ctx, outs...)
	}
	if results == nil {
		return
	}
	stream.Pipe(ctx, results, e.feedback)
}

func (e *engine[S, C, A]) effectFailed(recovered any) {
	e.stats.effectsFailed.Add(1)
	e.logger.Error("effect failed", zap.Any("panic", recovered))
}
