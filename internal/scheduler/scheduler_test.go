package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3batch/s3types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		mode    s3types.SchedulingMode
		want    s3types.SchedulingMode
		wantErr bool
	}{
		{"", s3types.SchedulingParallel, false},
		{s3types.SchedulingParallel, s3types.SchedulingParallel, false},
		{s3types.SchedulingSequential, s3types.SchedulingSequential, false},
		{"round-robin", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			s, err := New(tt.mode)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Mode())
		})
	}
}

func TestSchedulers_RunEveryTaskOnce(t *testing.T) {
	for _, s := range []Scheduler{Parallel{}, Sequential{}} {
		t.Run(string(s.Mode()), func(t *testing.T) {
			results := make([]int, 50)
			s.Run(context.Background(), len(results), func(_ context.Context, i int) {
				results[i] += i + 1
			})
			for i, r := range results {
				assert.Equal(t, i+1, r)
			}
		})
	}
}

func TestSequential_RunsInOrder(t *testing.T) {
	var order []int
	Sequential{}.Run(context.Background(), 5, func(_ context.Context, i int) {
		order = append(order, i)
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestParallel_OverlapsTasks(t *testing.T) {
	var current, peak atomic.Int64
	Parallel{}.Run(context.Background(), 4, func(context.Context, int) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		current.Add(-1)
	})
	assert.Greater(t, peak.Load(), int64(1))
}

func TestParallel_WaitsForAll(t *testing.T) {
	var mu sync.Mutex
	done := 0
	Parallel{}.Run(context.Background(), 10, func(context.Context, int) {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		done++
		mu.Unlock()
	})
	assert.Equal(t, 10, done)
}

func TestRun_ZeroTasks(t *testing.T) {
	called := false
	Parallel{}.Run(context.Background(), 0, func(context.Context, int) { called = true })
	Sequential{}.Run(context.Background(), 0, func(context.Context, int) { called = true })
	assert.False(t, called)
}
