package limiter

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Capacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"explicit", 3, 3},
		{"one", 1, 1},
		{"zero falls back", 0, DefaultCapacity},
		{"negative falls back", -2, DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.capacity).Capacity())
		})
	}
}

func TestLimiter_BoundsConcurrency(t *testing.T) {
	l := New(3)

	var current, peak atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), func(context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(3))
	assert.Equal(t, 0, l.InFlight())
}

func TestLimiter_DoReleasesOnError(t *testing.T) {
	l := New(1)
	boom := stderrors.New("boom")

	err := l.Do(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.InFlight())

	// the single slot must be free again
	require.NoError(t, l.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestLimiter_AcquireHonoursContext(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Acquire(context.Background()))
	assert.Equal(t, 1, l.InFlight())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	l.Release()
	assert.Equal(t, 0, l.InFlight())
}

func TestLimiter_InstancesAreIndependent(t *testing.T) {
	a, b := New(1), New(1)
	require.NoError(t, a.Acquire(context.Background()))
	defer a.Release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Acquire(ctx))
	b.Release()
}
