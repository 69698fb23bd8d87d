package ratelimit

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds how many tasks run at once. Waiters are admitted in the order
// they called Acquire.
type Gate struct {
	sem   *semaphore.Weighted
	limit int
}

func NewGate(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(limit)), limit: limit}
}

func (g *Gate) Limit() int {
	return g.limit
}

func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *Gate) Release() {
	g.sem.Release(1)
}

// Run executes fn once a slot is free and releases the slot afterwards.
func (g *Gate) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn(ctx)
}
