package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOutboxRunsJobsInOrder(t *testing.T) {
	o := NewOutbox(zap.NewNop())

	var mu sync.Mutex
	var order []int
	for i := 0; i < 5; i++ {
		require.True(t, o.Enqueue(Job{
			Name: "ordered",
			Run: func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			},
		}))
	}
	o.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order, "jobs must drain in enqueue order")
}

func TestOutboxRetriesUntilSuccess(t *testing.T) {
	o := NewOutbox(zap.NewNop(), WithRetry(5, time.Millisecond))

	attempts := 0
	o.Enqueue(Job{
		Name: "flaky",
		Run: func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("temporarily unavailable")
			}
			return nil
		},
	})
	o.Close()

	assert.Equal(t, 3, attempts)
}

func TestOutboxDropsAfterExhaustion(t *testing.T) {
	o := NewOutbox(zap.NewNop(), WithRetry(3, 0))

	attempts := 0
	o.Enqueue(Job{
		Name: "doomed",
		Run: func(context.Context) error {
			attempts++
			return errors.New("still broken")
		},
	})

	ran := false
	o.Enqueue(Job{
		Name: "next",
		Run: func(context.Context) error {
			ran = true
			return nil
		},
	})
	o.Close()

	assert.Equal(t, 3, attempts, "attempt cap must hold")
	assert.True(t, ran, "an exhausted job must not wedge the worker")
}

func TestOutboxEnqueueAfterClose(t *testing.T) {
	o := NewOutbox(zap.NewNop())
	o.Close()

	assert.False(t, o.Enqueue(Job{Name: "late", Run: func(context.Context) error { return nil }}))
}

func TestOutboxFullQueueDropsJob(t *testing.T) {
	gate := make(chan struct{})
	o := NewOutbox(zap.NewNop(), WithQueueSize(1))

	// First job occupies the worker until released.
	require.True(t, o.Enqueue(Job{
		Name: "blocker",
		Run: func(context.Context) error {
			<-gate
			return nil
		},
	}))
	// Wait until the worker has taken the blocker off the queue, then fill
	// the single buffered slot.
	require.Eventually(t, func() bool {
		return o.Enqueue(Job{Name: "buffered", Run: func(context.Context) error { return nil }})
	}, time.Second, time.Millisecond)

	assert.False(t, o.Enqueue(Job{Name: "overflow", Run: func(context.Context) error { return nil }}),
		"a full queue must drop rather than block")

	close(gate)
	o.Close()
}

func TestOutboxJobTimeout(t *testing.T) {
	o := NewOutbox(zap.NewNop(), WithRetry(1, 0), WithJobTimeout(10*time.Millisecond))

	var got error
	o.Enqueue(Job{
		Name: "slow",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			got = ctx.Err()
			return ctx.Err()
		},
	})
	o.Close()

	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestOutboxCloseIsIdempotent(t *testing.T) {
	o := NewOutbox(zap.NewNop())
	o.Close()
	o.Close()
}
