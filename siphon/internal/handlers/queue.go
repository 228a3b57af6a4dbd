package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/on-the-ground/siphon_go/siphon/internal/model"
)

var (
	// ErrPartitionFull is returned by TryEnqueue when the owning worker's
	// buffer has no room.
	ErrPartitionFull = errors.New("partition buffer is full")

	// ErrQueueClosed is returned once the queue's context has ended.
	ErrQueueClosed = errors.New("queue is closed")
)

// PartitionedQueue fans messages out to a fixed set of workers. Messages with
// the same PartitionKey always land on the same worker and are handled in
// the order they were enqueued.
//
// Workers stop when the queue's context ends. Channels are never closed by
// the workers: senders observe the context instead.
type PartitionedQueue[T model.Partitionable] struct {
	QueueId   string
	ctx       context.Context
	effectChs []chan T
	wg        *sync.WaitGroup
}

func NewPartitionedQueue[T model.Partitionable](
	ctx context.Context,
	config model.QueueConfig,
	handleFn func(context.Context, T),
) *PartitionedQueue[T] {
	config = model.NewQueueConfig(config.BufferSize, config.NumWorkers)
	wg := &sync.WaitGroup{}
	channels := make([]chan T, config.NumWorkers)
	for i := 0; i < config.NumWorkers; i++ {
		ch := make(chan T, config.BufferSize)
		wg.Add(1)
		go func(ch chan T) {
			defer wg.Done()
			for {
				select {
				case msg := <-ch:
					if ctx.Err() != nil {
						return
					}
					handleFn(ctx, msg)
				case <-ctx.Done():
					return
				}
			}
		}(ch)
		channels[i] = ch
	}
	return &PartitionedQueue[T]{
		QueueId:   uuid.New().String(),
		ctx:       ctx,
		effectChs: channels,
		wg:        wg,
	}
}

// TryEnqueue hands msg to its worker without blocking. A worker busy with a
// full buffer makes it fail with ErrPartitionFull; other partitions are not
// affected.
func (pq *PartitionedQueue[T]) TryEnqueue(msg T) error {
	if pq.ctx.Err() != nil {
		return ErrQueueClosed
	}
	select {
	case pq.effectChs[getIndexByHash(msg, len(pq.effectChs))] <- msg:
		return nil
	default:
		return ErrPartitionFull
	}
}

// NumWorkers reports the number of partitions.
func (pq *PartitionedQueue[T]) NumWorkers() int {
	return len(pq.effectChs)
}

// Wait blocks until every worker has returned.
func (pq *PartitionedQueue[T]) Wait() {
	pq.wg.Wait()
}
