package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesAndDrainsOnStop(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	q := NewQueue[int]("test", func(ctx context.Context, n int) error {
		mu.Lock()
		seen = append(seen, n)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 16})

	require.ErrorIs(t, q.Enqueue(1), ErrQueueStopped)

	q.Start(context.Background())
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	q.Stop()

	assert.Len(t, seen, 10)
	assert.ErrorIs(t, q.Enqueue(11), ErrQueueStopped)
	q.Stop()
}

func TestQueueRejectsWhenFull(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue[int]("full", func(ctx context.Context, n int) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(1))
	require.Eventually(t, func() bool { return len(q.items) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(2))
	assert.ErrorIs(t, q.Enqueue(3), ErrQueueFull)

	close(release)
	q.Stop()
}

func TestQueueHandlerErrorsDoNotStopWorkers(t *testing.T) {
	var handled int32
	q := NewQueue[int]("errors", func(ctx context.Context, n int) error {
		atomic.AddInt32(&handled, 1)
		return errors.New("boom")
	}, QueueConfig{})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	q.Stop()

	assert.EqualValues(t, 2, atomic.LoadInt32(&handled))
}

func TestQueueStopGivesUpAfterDrainTimeout(t *testing.T) {
	var handled int32
	q := NewQueue[int]("slow", func(ctx context.Context, n int) error {
		atomic.AddInt32(&handled, 1)
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return ctx.Err()
	}, QueueConfig{Workers: 1, BufferSize: 4, DrainTimeout: 20 * time.Millisecond})
	q.Start(context.Background())
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(i))
	}

	start := time.Now()
	q.Stop()
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&handled))
}
