package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// batchOpts holds the flags specific to the batch command.
type batchOpts struct {
	count       int
	chain       bool
	concurrency int
	dir         string
}

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		gen generateFlags
		rnd renderFlags
		cf  cacheFlags
		bo  = batchOpts{count: 8, dir: "."}
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate mosaics for a run of seeds",
		Long: `Generate one mosaic per seed and write each as stained-glass-<seed>.<format>.

By default the seeds are consecutive, starting at --seed, and are generated
concurrently. With --chain each mosaic is seeded from the follow-up seed
of the one before, the sequence the preview's reseed key walks.`,
		Example: `  stainedglass batch --seed 100 --count 20 -f png --dir out/
  stainedglass batch --seed 42 --count 5 --chain -p copper-sage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(cmd, &gen, &rnd)
			if err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), opts, bo, cf)
		},
	}

	gen.register(cmd)
	rnd.register(cmd)
	cf.register(cmd)
	cmd.Flags().IntVarP(&bo.count, "count", "c", bo.count, "number of mosaics")
	cmd.Flags().BoolVar(&bo.chain, "chain", false, "follow each mosaic's next seed instead of counting up")
	cmd.Flags().IntVarP(&bo.concurrency, "concurrency", "j", 0, "parallel generations (default: number of CPUs)")
	cmd.Flags().StringVarP(&bo.dir, "dir", "d", bo.dir, "output directory")

	return cmd
}

func (c *CLI) runBatch(ctx context.Context, opts pipeline.Options, bo batchOpts, cf cacheFlags) error {
	if bo.count < 1 || bo.count > pipeline.MaxBatch {
		return errors.New(errors.ErrCodeInvalidInput, "count must be in [1, %d], got %d", pipeline.MaxBatch, bo.count)
	}

	runner, err := c.newRunner(ctx, cf.noCache, cf.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	start := time.Now()
	spin := newSpinner(ctx, fmt.Sprintf("Generating %d mosaics...", bo.count))
	spin.start()

	var results []*pipeline.Result
	if bo.chain {
		results, err = runChain(ctx, runner, opts, bo.count)
	} else {
		results, err = runner.Batch(ctx, opts, pipeline.Seeds(opts.Seed, bo.count), bo.concurrency)
	}
	if err != nil {
		if spin.interrupted() {
			spin.stop()
			printWarning("Batch interrupted")
			return err
		}
		spin.fail("Batch failed")
		return err
	}
	spin.stop()

	var files, cached int
	for _, res := range results {
		base := filepath.Join(bo.dir, defaultBase(res.Mosaic.Seed))
		paths, err := writeAll(res.Artifacts, opts.Formats, basedPaths(base, opts.Formats))
		if err != nil {
			return err
		}
		files += len(paths)
		if res.CacheInfo.MosaicHit {
			cached++
		}
		c.Logger.Debug("wrote mosaic", "seed", res.Mosaic.Seed, "files", len(paths))
	}

	printSuccess("Generated %d mosaics (%s)", len(results), time.Since(start).Round(time.Millisecond))
	printKeyValue("Seeds", fmt.Sprintf("%d … %d", results[0].Mosaic.Seed, results[len(results)-1].Mosaic.Seed))
	printKeyValue("Files", fmt.Sprintf("%d in %s", files, bo.dir))
	printKeyValue("Cached", fmt.Sprintf("%d of %d", cached, len(results)))
	return nil
}

// runChain generates count mosaics, each seeded by the previous one's
// next seed.
func runChain(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, count int) ([]*pipeline.Result, error) {
	s := pipeline.NewSession(runner, opts)
	first, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	results := []*pipeline.Result{first}
	for len(results) < count {
		res, err := s.Advance(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
