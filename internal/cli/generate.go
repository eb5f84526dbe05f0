package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		gen    generateFlags
		rnd    renderFlags
		cf     cacheFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a mosaic and write it in one or more formats",
		Long: `Generate a stained-glass mosaic from a seed.

Without --seed a random seed is drawn and printed, so any result can be
regenerated exactly. Output files are named stained-glass-<seed>.<format>
unless -o is given.`,
		Example: `  stainedglass generate --seed 42
  stainedglass generate -s 7 -n 300 -p copper-sage -f svg,png,json
  stainedglass generate -s 7 --network delaunay -f png --scale 2 -o window.png
  stainedglass generate -s 7 -f svg -o - > window.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(cmd, &gen, &rnd)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), opts, output, cf)
		},
	}

	gen.register(cmd)
	rnd.register(cmd)
	cf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, cf cacheFlags) error {
	runner, err := c.newRunner(ctx, cf.noCache, cf.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	c.Logger.Debug("generating", "opts", opts.String())
	quiet := output == stdoutPath
	var spin *spinner
	if !quiet {
		spin = newSpinner(ctx, fmt.Sprintf("Generating mosaic %d...", opts.Seed))
		spin.start()
	}

	result, err := runner.Execute(ctx, opts)
	if spin != nil {
		spin.stop()
	}
	if err != nil {
		return err
	}

	m := result.Mosaic
	paths, err := writeArtifacts(os.Stdout, result.Artifacts, opts.Formats, output, m.Seed)
	if err != nil {
		return err
	}
	if quiet {
		return nil
	}

	printSuccess("Mosaic %s", StyleNumber.Render(fmt.Sprint(m.Seed)))
	printStats(len(m.Cells), len(m.Edges), result.CacheInfo.MosaicHit && result.CacheInfo.RenderHit)
	printDetail("palette %s · %gx%g · %s network", m.Palette.Name, m.Width, m.Height, m.Network)
	if m.Degenerate != "" {
		printWarning("sites could not be triangulated; the frame is a single cell")
	}
	for _, p := range paths {
		printFile(p)
	}
	printNewline()
	printNextStep("Next seed", fmt.Sprintf("%s generate --seed %d", appName, m.NextSeed))
	return nil
}
