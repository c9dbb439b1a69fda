package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Execute(t *testing.T) {
	var running, peak atomic.Int32
	pool := NewPool(3, func(ctx context.Context, n int) (int, error) {
		cur := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		if n == 4 {
			return 0, errors.New("four")
		}
		return n * n, nil
	})

	inputs := []int{1, 2, 3, 4, 5, 6, 7}
	tasks := pool.Execute(context.Background(), inputs)

	require.Len(t, tasks, len(inputs))
	for i, task := range tasks {
		assert.Equal(t, inputs[i], task.Input)
		assert.True(t, task.Done)
		if task.Input == 4 {
			assert.EqualError(t, task.Err, "four")
			continue
		}
		assert.NoError(t, task.Err)
		assert.Equal(t, task.Input*task.Input, task.Result)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestPool_MinimumOneWorker(t *testing.T) {
	pool := NewPool(0, func(ctx context.Context, s string) (string, error) { return s + "!", nil })
	tasks := pool.Execute(context.Background(), []string{"a", "b"})
	assert.Equal(t, "a!", tasks[0].Result)
	assert.Equal(t, "b!", tasks[1].Result)
}

func TestPool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})
	tasks := pool.Execute(ctx, []int{1, 2, 3})

	require.Len(t, tasks, 3)
	var done int32
	for _, task := range tasks {
		if task.Done {
			done++
		}
	}
	assert.Equal(t, calls.Load(), done)
}
