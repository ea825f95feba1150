package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runBounded calls fn for every index in [0, n) with at most limit calls in
// flight. Each call must only write its own result slot; callers merge the
// slots in index order afterwards. The first non-nil error cancels the
// remaining calls and is returned.
func runBounded(ctx context.Context, limit, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
