package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stainedglass/pkg/errors"
)

// MaxBatch bounds the number of seeds in one batch.
const MaxBatch = 1000

// Seeds returns n consecutive seeds starting at start, wrapping at 2^32.
func Seeds(start uint32, n int) []uint32 {
	out := make([]uint32, max(n, 0))
	for i := range out {
		out[i] = start + uint32(i)
	}
	return out
}

// Batch runs the pipeline once per seed with at most concurrency runs in
// flight, returning results in seed order. Each run generates with its own
// RNG, so results match sequential runs exactly. The first failure cancels
// the remaining runs.
func (r *Runner) Batch(ctx context.Context, opts Options, seeds []uint32, concurrency int) ([]*Result, error) {
	if len(seeds) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch needs at least one seed")
	}
	if len(seeds) > MaxBatch {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch too large (max %d seeds), got %d", MaxBatch, len(seeds))
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	r.inheritLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	results := make([]*Result, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := opts
			o.Seed = seed
			res, err := r.Execute(gctx, o)
			if err != nil {
				return errors.Wrap(errors.CodeOr(err, errors.ErrCodeInternal), err, "seed %d", seed)
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
