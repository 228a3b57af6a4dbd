package stream_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/on-the-ground/siphon_go/siphon/stream"
	"github.com/stretchr/testify/assert"
)

func TestStream_MapFilter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	source := stream.Of(ctx, 1, 2, 3, 4, 5)
	mapped := stream.Map(ctx, source, func(v int) string { return fmt.Sprintf("v=%d", v) })
	filtered := stream.Filter(ctx, mapped, func(v string) bool {
		return strings.HasSuffix(v, "2") || strings.HasSuffix(v, "4")
	})

	assert.Equal(t, []string{"v=2", "v=4"}, stream.Collect(ctx, filtered))
}

func TestStream_MergeKeepsPerSourceOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a := stream.Of(ctx, "a1", "a2", "a3")
	b := stream.Of(ctx, "b1", "b2")
	got := stream.Collect(ctx, stream.Merge(ctx, a, nil, b))

	assert.ElementsMatch(t, []string{"a1", "a2", "a3", "b1", "b2"}, got)

	var fromA []string
	for _, v := range got {
		if strings.HasPrefix(v, "a") {
			fromA = append(fromA, v)
		}
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, fromA)
}

func TestStream_ShutdownPropagation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := make(chan int)
	out := stream.Tap(ctx, stream.Map(ctx, source, func(v int) int { return v * 2 }), func(int) {})

	done := make(chan struct{})
	go func() {
		for range out {
		}
		close(done)
	}()

	source <- 1
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancellation did not close the pipeline")
	}
}

func TestStream_GenerateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	out := stream.Generate(ctx, func(ctx context.Context, yield func(int) bool) {
		defer close(stopped)
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	})

	assert.Equal(t, 0, <-out)
	assert.Equal(t, 1, <-out)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("generator kept running after cancel")
	}
}

func TestStream_Ticker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	n := 0
	ticks := stream.Ticker(ctx, 5*time.Millisecond, func(time.Time) int {
		n++
		return n
	})
	assert.Equal(t, 1, <-ticks)
	assert.Equal(t, 2, <-ticks)
}

func TestStream_OrderBy(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	source := stream.Of(ctx, 2, 1, 4, 3, 6, 5)
	got := stream.Collect(ctx, stream.OrderBy(ctx, source, 2, func(a, b int) int { return a - b }))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, got)
}

func TestStream_EmptyIsClosed(t *testing.T) {
	_, ok := <-stream.Empty[int]()
	assert.False(t, ok)
}
