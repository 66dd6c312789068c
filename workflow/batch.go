package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunBatch executes one run per initial state over the same compiled graph,
// at most concurrency at a time, and returns the final states in input
// order. Runs share no mutable engine state; node functions must be safe to
// call concurrently, which is the node author's obligation. The first
// failing run cancels the remaining ones and its error is returned.
func RunBatch(ctx context.Context, g *CompiledGraph, initials []State, concurrency int, opts ...RunOption) ([]State, error) {
	if concurrency <= 0 {
		concurrency = len(initials)
	}
	results := make([]State, len(initials))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, initial := range initials {
		i, initial := i, initial
		eg.Go(func() error {
			final, err := g.Invoke(ctx, initial, opts...)
			if err != nil {
				return err
			}
			results[i] = final
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
