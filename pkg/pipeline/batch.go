package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wrldbldr/pkg/config"
)

// Batch executes the pipeline once per seed with at most limit runs in
// flight. A non-positive limit uses GOMAXPROCS. Results are returned in seed
// order; the first failure cancels the remaining runs.
func (r *Runner) Batch(ctx context.Context, p *config.Project, seeds []uint64, limit int, opts Options) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(seeds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, seed := range seeds {
		g.Go(func() error {
			o := opts
			o.Seed = &seed
			res, err := r.Execute(ctx, p, o)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
