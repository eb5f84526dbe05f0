package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/cache"
	"github.com/matzehuels/stainedglass/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the mosaic and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var (
		redisURL string
		expired  bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached mosaics and artifacts",
		Long: `Remove every cached mosaic and artifact.

With --expired only entries past their lifetime (and unreadable ones) are
removed. Redis expires entries itself, so there is nothing to prune there.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc, err := c.newCache(ctx, false, redisURL)
			if err != nil {
				return err
			}
			defer cc.Close()

			if expired {
				n := 0
				if p, ok := cc.(cache.Pruner); ok {
					if n, err = p.Prune(ctx); err != nil {
						return errors.Wrap(errors.ErrCodeInternal, err, "prune cache")
					}
				}
				printSuccess("Removed %s", plural(n, "expired file"))
				printDetail("%s", cacheLocation(cc))
				return nil
			}

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "cache backend cannot be cleared")
			}
			if err := clearer.Clear(ctx); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "clear cache")
			}

			printSuccess("Cache cleared")
			printDetail("%s", cacheLocation(cc))
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", "", "clear a Redis cache instead of the local one")
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir(c.config.Cache.Dir)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func cacheLocation(cc cache.Cache) string {
	switch v := cc.(type) {
	case *cache.FileCache:
		return "Directory: " + v.Dir()
	case *cache.RedisCache:
		return "Redis"
	default:
		return "Disabled"
	}
}
