package dispatch_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/plus3/blockworks/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := dispatch.New(dispatch.Options{Name: "fifo", Workers: 1})

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, q.Async(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	wg.Wait()
	require.NoError(t, q.Close())

	require.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}

	s := q.Stats()
	assert.Equal(t, uint64(100), s.Submitted)
	assert.Equal(t, uint64(100), s.Executed)
	assert.Equal(t, uint64(0), s.Dropped)
}

func TestQueueClose(t *testing.T) {
	t.Run("no execution after shutdown", func(t *testing.T) {
		q := dispatch.New(dispatch.Options{Name: "closed"})
		require.NoError(t, q.Close())

		ran := false
		err := q.Async(func() { ran = true })
		assert.ErrorIs(t, err, dispatch.ErrClosed)
		time.Sleep(10 * time.Millisecond)
		assert.False(t, ran)
		assert.ErrorIs(t, q.Close(), dispatch.ErrClosed)
	})

	t.Run("queued items are dropped", func(t *testing.T) {
		q := dispatch.New(dispatch.Options{Name: "drop", Workers: 1})

		started := make(chan struct{})
		release := make(chan struct{})
		require.NoError(t, q.Async(func() {
			close(started)
			<-release
		}))
		<-started

		var mu sync.Mutex
		ran := 0
		for i := 0; i < 5; i++ {
			require.NoError(t, q.Async(func() {
				mu.Lock()
				ran++
				mu.Unlock()
			}))
		}

		done := make(chan error)
		go func() { done <- q.Close() }()

		// Close marks the queue closed before waiting on the running item.
		require.Eventually(t, func() bool {
			return errors.Is(q.Async(func() {}), dispatch.ErrClosed)
		}, time.Second, time.Millisecond)
		close(release)
		require.NoError(t, <-done)

		assert.Equal(t, 0, ran)
		s := q.Stats()
		assert.GreaterOrEqual(t, s.Dropped, uint64(5))
		assert.Equal(t, uint64(1), s.Executed)
		assert.Equal(t, 0, s.Pending)
	})
}

func TestQueueCapacity(t *testing.T) {
	q := dispatch.New(dispatch.Options{Name: "bounded", Workers: 1, Capacity: 2})

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, q.Async(func() {
		close(started)
		<-release
	}))
	<-started

	require.NoError(t, q.Async(func() {}))
	require.NoError(t, q.Async(func() {}))
	assert.ErrorIs(t, q.Async(func() {}), dispatch.ErrQueueFull)
	assert.Equal(t, 2, q.Stats().Pending)

	close(release)
	require.Eventually(t, func() bool { return q.Stats().Executed == 3 }, time.Second, time.Millisecond)
	assert.NoError(t, q.Async(func() {}))
	assert.NoError(t, q.Close())
}

func TestQueueFault(t *testing.T) {
	q := dispatch.New(dispatch.Options{Name: "faulty", Workers: 2})

	require.NoError(t, q.Async(func() { panic("boom") }))
	require.Eventually(t, func() bool { return q.Stats().Workers == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, uint64(1), q.Stats().Faults)

	done := make(chan struct{})
	require.NoError(t, q.Async(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("surviving worker did not run the item")
	}

	err := q.Close()
	var fault *dispatch.WorkerFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "faulty", fault.Queue)
	assert.Equal(t, "boom", fault.Value)
	assert.NotEmpty(t, fault.Stack)
	assert.Contains(t, fault.Error(), "work item panicked")
}

func TestQueueNilItem(t *testing.T) {
	q := dispatch.New(dispatch.Options{})
	defer q.Close()
	assert.Panics(t, func() { q.Async(nil) })
}
