package cli

import (
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/core/rng"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// generateFlags holds the flags shared by every command that builds a
// mosaic. Only flags the user set override config values.
type generateFlags struct {
	seed         int64
	width        float64
	height       float64
	cells        int
	palette      string
	inks         []string
	jitter       float64
	extra        float64
	exactGrid    bool
	inset        float64
	network      string
	seam         string
	minWidth     float64
	maxWidth     float64
	noEdgeJitter bool
	refresh      bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Int64VarP(&f.seed, "seed", "s", 0, "mosaic seed, wrapped into 32 bits (default: random)")
	fl.Float64Var(&f.width, "width", pipeline.DefaultWidth, "frame width")
	fl.Float64Var(&f.height, "height", pipeline.DefaultHeight, "frame height")
	fl.IntVarP(&f.cells, "cells", "n", pipeline.DefaultCells, "target cell count")
	fl.StringVarP(&f.palette, "palette", "p", "", "palette name (default: picked by seed)")
	fl.StringSliceVar(&f.inks, "inks", nil, "override the palette's inks (comma-separated hex colors)")
	fl.Float64Var(&f.jitter, "jitter", 0, "site jitter as a fraction of the grid step (default 0.5)")
	fl.Float64Var(&f.extra, "extra", pipeline.DefaultExtra, "extra sites as a fraction of the grid")
	fl.BoolVar(&f.exactGrid, "exact-grid", false, "no extra sites: exactly cols×rows cells")
	fl.Float64Var(&f.inset, "inset", pipeline.DefaultInset, "cell inset scale in (0, 1]")
	fl.StringVar(&f.network, "network", pipeline.DefaultNetwork, "lead network: voronoi or delaunay")
	fl.StringVar(&f.seam, "seam", string(pipeline.DefaultSeam), "seam width mode: length or junction")
	fl.Float64Var(&f.minWidth, "min-width", 0, "thinnest lead width")
	fl.Float64Var(&f.maxWidth, "max-width", 0, "thickest lead width")
	fl.BoolVar(&f.noEdgeJitter, "no-edge-jitter", false, "draw leads at their nominal width")
	fl.BoolVar(&f.refresh, "refresh", false, "bypass the mosaic cache")
}

// apply copies set flags onto opts. Without --seed a random seed is drawn.
func (f *generateFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("seed") {
		opts.Seed = rng.NormalizeSeed(f.seed)
	} else {
		opts.Seed = rand.Uint32()
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("cells") {
		opts.Cells = f.cells
	}
	if changed("palette") {
		opts.Palette = f.palette
	}
	if changed("inks") {
		opts.Inks = f.inks
	}
	if changed("jitter") {
		opts.Jitter = f.jitter
	}
	if changed("extra") {
		opts.Extra = f.extra
	}
	if changed("inset") {
		opts.Inset = f.inset
	}
	if changed("network") {
		opts.Network = f.network
	}
	if changed("seam") {
		opts.Seam = f.seam
	}
	if changed("min-width") {
		opts.MinWidth = f.minWidth
	}
	if changed("max-width") {
		opts.MaxWidth = f.maxWidth
	}
	opts.ExactGrid = f.exactGrid
	opts.DisableEdgeJitter = f.noEdgeJitter
	opts.Refresh = f.refresh
}

// renderFlags holds the flags shared by every command that writes artifacts.
type renderFlags struct {
	formats    string
	margin     float64
	borderless bool
	noStreaks  bool
	scale      float64
	labels     bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, topology (comma-separated)")
	fl.Float64Var(&f.margin, "margin", 0, "canvas margin as a fraction of the shorter side (default 0.06)")
	fl.BoolVar(&f.borderless, "borderless", false, "no margin and no deckle border")
	fl.BoolVar(&f.noStreaks, "no-streaks", false, "omit the highlight streaks")
	fl.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	fl.BoolVar(&f.labels, "labels", false, "label cells in the topology view")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	if changed("margin") {
		opts.Margin = f.margin
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	opts.Borderless = f.borderless
	opts.NoStreaks = f.noStreaks
	opts.Labels = f.labels
}

// cacheFlags selects the cache backend for one command.
type cacheFlags struct {
	noCache  bool
	redisURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", "", "use a Redis cache (redis://host:port/db)")
}

// buildOptions layers pipeline defaults, config values, and flags.
func (c *CLI) buildOptions(cmd *cobra.Command, gen *generateFlags, rnd *renderFlags) (pipeline.Options, error) {
	var opts pipeline.Options
	c.config.Generate.apply(&opts)
	if gen != nil {
		gen.apply(cmd, &opts)
	}
	if rnd != nil {
		rnd.apply(cmd, &opts)
	}
	set, err := c.palettes()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts.Palettes = set
	opts.Logger = c.Logger
	return opts, nil
}
