// Package workerpool provides a bounded worker pool over a queue of tasks,
// the scheduling model spec.md §5 calls for: "pool of workers over a queue
// of tasks", no fine-grained cooperative scheduling inside the core.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes fn once per item in items, running at most concurrency
// invocations at a time. It returns the first error from any fn call (all
// in-flight calls are allowed to finish; remaining queued items are
// cancelled via ctx). A concurrency of 0 or less means unbounded.
func Run[T any](ctx context.Context, items []T, concurrency int, fn func(ctx context.Context, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}

// RunIndexed is like Run but also passes each item's index, for callers
// that need to write results into a pre-sized slice without a separate
// mutex.
func RunIndexed[T any](ctx context.Context, items []T, concurrency int, fn func(ctx context.Context, index int, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			return fn(gctx, i, item)
		})
	}
	return g.Wait()
}
