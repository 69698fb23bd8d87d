package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateBoundsConcurrency(t *testing.T) {
	g := NewGate(2)
	var inFlight, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Run(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, int32(2))
	assert.Greater(t, peak, int32(0))
}

func TestGateAdmitsInOrder(t *testing.T) {
	g := NewGate(1)
	require.NoError(t, g.Acquire(context.Background()))

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = g.Run(context.Background(), func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		// Let each waiter queue before the next one starts.
		time.Sleep(10 * time.Millisecond)
	}

	g.Release()
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestGateAcquireCancelled(t *testing.T) {
	g := NewGate(1)
	require.NoError(t, g.Acquire(context.Background()))
	defer g.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, g.Acquire(ctx))
}

func TestNewGateMinimum(t *testing.T) {
	assert.Equal(t, 1, NewGate(0).Limit())
}

func TestProviderLimiterPerProvider(t *testing.T) {
	l := NewProviderLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})
	assert.Same(t, l.GetLimiter("duffel"), l.GetLimiter("duffel"))
	assert.NotSame(t, l.GetLimiter("duffel"), l.GetLimiter("static"))

	require.NoError(t, l.Wait(context.Background(), "duffel"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "duffel"))
}

func TestNilProviderLimiterNeverBlocks(t *testing.T) {
	var l *ProviderLimiter
	assert.NoError(t, l.Wait(context.Background(), "any"))
}
