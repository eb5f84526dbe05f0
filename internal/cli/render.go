package cli

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// renderCommand creates the render command, which turns a saved mosaic
// back into artifacts without regenerating it.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		rnd     renderFlags
		cf      cacheFlags
		output  string
		recolor string
	)

	cmd := &cobra.Command{
		Use:   "render [mosaic.json]",
		Short: "Render a saved mosaic JSON file",
		Long: `Render a mosaic previously written with --format json.

The geometry is read as saved. --palette repaints the cells with another
palette while keeping each cell's ink index.`,
		Example: `  stainedglass render stained-glass-42.json -f png --scale 2
  stainedglass render stained-glass-42.json -p copper-sage -o sage.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(cmd, nil, &rnd)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], recolor, output, opts, cf)
		},
	}

	rnd.register(cmd)
	cf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&recolor, "palette", "p", "", "repaint with this palette")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, recolor, output string, opts pipeline.Options, cf cacheFlags) error {
	logger := c.Logger
	logger.Infof("Rendering %s", input)

	m, err := mosaic.ReadFile(input)
	if err != nil {
		code := errors.ErrCodeInvalidInput
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.ErrCodeFileNotFound
		}
		return errors.Wrap(code, err, "load mosaic")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid mosaic %s", input)
	}
	logger.Infof("Loaded mosaic %d: %d cells, %d edges", m.Seed, len(m.Cells), len(m.Edges))

	if recolor != "" {
		p, err := opts.Palettes.Lookup(recolor)
		if err != nil {
			return err
		}
		if err := m.Recolor(p); err != nil {
			return err
		}
		logger.Debug("recolored", "palette", p.Name)
	}

	runner, err := c.newRunner(ctx, cf.noCache, cf.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	sw := startStopwatch(logger)
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, m, opts)
	if err != nil {
		return err
	}
	sw.lap("rendered", "seed", m.Seed, "formats", strings.Join(opts.Formats, ","), "cached", hit)

	var paths []string
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		paths, err = writeAll(artifacts, opts.Formats, basedPaths(base, opts.Formats))
	} else {
		paths, err = writeArtifacts(os.Stdout, artifacts, opts.Formats, output, m.Seed)
	}
	if err != nil {
		return err
	}
	if output == stdoutPath {
		return nil
	}

	printSuccess("Rendered mosaic %d", m.Seed)
	printStats(len(m.Cells), len(m.Edges), hit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
