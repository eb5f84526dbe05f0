// Package pipeline runs the generate → render sequence shared by the CLI,
// the HTTP server, and the preview TUI.
//
// By centralizing defaults, caching, and logging here, every entry point
// produces byte-identical output for the same options.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Generate: resolve the palette and build the mosaic (pkg/core/glass)
//  2. Render: turn the mosaic into artifacts (SVG, PNG, PDF, JSON, DOT)
//
// Both stages are cached: mosaics by their generation inputs, artifacts by
// the hash of the serialized mosaic plus the render settings.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Seed:    42,
//	    Palette: "copper-sage",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	m, hit, err := runner.GenerateWithCacheInfo(ctx, opts)
//	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, m, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stainedglass/pkg/cache"
	"github.com/matzehuels/stainedglass/pkg/core/attrs"
	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/core/glass"
	"github.com/matzehuels/stainedglass/pkg/core/points"
	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/palette"
	"github.com/matzehuels/stainedglass/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Server, and TUI
// =============================================================================

const (
	// DefaultWidth is the default frame width.
	DefaultWidth = 1200.0

	// DefaultHeight is the default frame height.
	DefaultHeight = 1600.0

	// DefaultCells is the default target cell count.
	DefaultCells = 140

	// DefaultExtra sprinkles 15% extra sites over the grid. Set
	// Options.ExactGrid to generate exactly cols×rows cells.
	DefaultExtra = 0.15

	// DefaultInset leaves a thin gap of background between cell and lead.
	DefaultInset = 0.96

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0

	// MaxCells bounds the cell count accepted by hosts.
	MaxCells = 5000

	// MaxSites bounds the sites a run may place, extras and grid rounding
	// included.
	MaxSites = 2 * MaxCells

	// MaxExtra bounds Extra: at most one extra site per grid site.
	MaxExtra = 1.0

	// MaxScale and MaxMargin bound the output fields. The PNG size is
	// further capped by errors.MaxRasterSide and errors.MaxRasterPixels.
	MaxScale  = 16.0
	MaxMargin = 1.0
)

// DefaultNetwork is the default lead network.
const DefaultNetwork = mosaic.NetworkVoronoi

// DefaultSeam is the default seam width mode.
const DefaultSeam = attrs.DefaultSeam

// Output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatTopology = "topology"
)

// ValidFormats reports which format names Render accepts.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatTopology: true,
}

// FormatNames lists the formats in display order.
var FormatNames = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT, FormatTopology}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:      "image/svg+xml",
	FormatPNG:      "image/png",
	FormatPDF:      "application/pdf",
	FormatJSON:     "application/json",
	FormatDOT:      "text/vnd.graphviz",
	FormatTopology: "image/svg+xml",
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	if format == FormatTopology {
		return "topology.svg"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one run. Zero values mean "use the default"; the
// JSON form is what batch manifests and the HTTP layer exchange.
type Options struct {
	// Geometry and colour
	Seed              uint32   `json:"seed"`
	Width             float64  `json:"width,omitempty"`
	Height            float64  `json:"height,omitempty"`
	Cells             int      `json:"cells,omitempty"`
	Palette           string   `json:"palette,omitempty"` // empty picks by seed
	Inks              []string `json:"inks,omitempty"`    // overrides the palette's inks
	Jitter            float64  `json:"jitter,omitempty"`
	Extra             float64  `json:"extra,omitempty"`
	ExactGrid         bool     `json:"exact_grid,omitempty"`
	Inset             float64  `json:"inset,omitempty"`
	Network           string   `json:"network,omitempty"`
	Seam              string   `json:"seam,omitempty"`
	MinWidth          float64  `json:"min_width,omitempty"`
	MaxWidth          float64  `json:"max_width,omitempty"`
	DisableEdgeJitter bool     `json:"disable_edge_jitter,omitempty"`
	Refresh           bool     `json:"refresh,omitempty"`

	// Output
	Formats    []string `json:"formats,omitempty"`
	Margin     float64  `json:"margin,omitempty"`
	Borderless bool     `json:"borderless,omitempty"` // no margin, no deckle
	NoStreaks  bool     `json:"no_streaks,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Labels     bool     `json:"labels,omitempty"` // topology node labels

	// Supplied by the host
	Logger   *log.Logger  `json:"-"`
	Palettes *palette.Set `json:"-"`

	// set once ValidateAndSetDefaults succeeds
	validated bool
}

// Result is what Execute produces.
type Result struct {
	// RunID identifies this run in logs and HTTP responses.
	RunID string

	// Mosaic is the generated mosaic with its full palette.
	Mosaic mosaic.Mosaic

	// MosaicHash is the content hash of the serialized mosaic.
	MosaicHash string

	// Artifacts maps each requested format to its bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records sizes and stage timings for a run.
type Stats struct {
	CellCount    int
	EdgeCount    int
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo says which stages were served from cache. RenderHit is set
// only when every format was.
type CacheInfo struct {
	MosaicHit bool
	RenderHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat returns INVALID_FORMAT for unknown format names.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %v)", format, FormatNames)
	}
	return nil
}

// ValidateFormats stops at the first unknown format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if slices.Contains(o.Formats, FormatPNG) {
		if err := errors.ValidateRasterSize(o.RasterSize()); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ValidateForGenerate validates and sets defaults for generation.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	if err := errors.ValidateFrame(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateCellCount(o.Cells, MaxCells); err != nil {
		return err
	}
	if !finiteIn(o.Extra, 0, MaxExtra) {
		return errors.New(errors.ErrCodeInvalidInput, "extra must be in [0, %g], got %g", MaxExtra, o.Extra)
	}
	if err := o.ValidateSiteCount(MaxSites); err != nil {
		return err
	}
	if o.Palette != "" {
		if err := errors.ValidatePaletteName(o.Palette); err != nil {
			return err
		}
	}
	for _, c := range o.Inks {
		if err := errors.ValidateHexColor(c); err != nil {
			return err
		}
	}
	if _, err := glass.ParseNetwork(o.Network); err != nil {
		return err
	}
	if _, err := attrs.ParseSeamMode(o.Seam); err != nil {
		return err
	}
	return nil
}

// SetGenerateDefaults sets default values for generation.
func (o *Options) SetGenerateDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Cells == 0 {
		o.Cells = DefaultCells
	}
	if o.ExactGrid {
		o.Extra = 0
	} else if o.Extra == 0 {
		o.Extra = DefaultExtra
	}
	if o.Inset == 0 {
		o.Inset = DefaultInset
	}
	if o.Network == "" {
		o.Network = DefaultNetwork
	}
	if o.Seam == "" {
		o.Seam = string(DefaultSeam)
	}
	if o.Palettes == nil {
		o.Palettes = palette.NewSet()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults fills the output fields left at zero.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Margin == 0 && !o.Borderless {
		o.Margin = sink.DefaultMargin
	}
	if o.Borderless {
		o.Margin = 0
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies SetRenderDefaults and checks the output fields.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !finiteIn(o.Margin, 0, MaxMargin) {
		return errors.New(errors.ErrCodeInvalidInput, "margin must be in [0, %g], got %g", MaxMargin, o.Margin)
	}
	if !finiteIn(o.Scale, 0, MaxScale) || o.Scale == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}
	return nil
}

// ValidateSiteCount checks how many sites generation would place for o
// against limit. Frame, cell count, and extras together decide the count,
// so a sliver frame or a large Extra can exceed limit even when Cells is
// small. A limit of zero or less only rejects unusable settings.
func (o *Options) ValidateSiteCount(limit int) error {
	c := *o
	c.SetGenerateDefaults()
	if err := errors.ValidateFrame(c.Width, c.Height); err != nil {
		return err
	}
	if c.Cells < 1 || math.IsNaN(c.Extra) || math.IsInf(c.Extra, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "cells %d and extra %g place no sites", c.Cells, c.Extra)
	}
	n := points.SiteCount(geom.Frame(c.Width, c.Height), points.Options{Count: c.Cells, Extra: c.Extra})
	if limit > 0 && n > limit {
		return errors.New(errors.ErrCodeInvalidInput,
			"%gx%g with %d cells and extra %g places %d sites (max %d)", c.Width, c.Height, c.Cells, c.Extra, n, limit)
	}
	return nil
}

// RasterSize returns the PNG size in pixels for the frame, margin, and
// scale in o.
func (o *Options) RasterSize() (width, height float64) {
	pad := o.Margin * math.Min(o.Width, o.Height)
	return math.Ceil((o.Width + 2*pad) * o.Scale), math.Ceil((o.Height + 2*pad) * o.Scale)
}

func finiteIn(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// ResolvePalette returns the palette named by the options, or the one
// picked by seed, with Inks applied on top.
func (o *Options) ResolvePalette() (palette.Palette, error) {
	set := o.Palettes
	if set == nil {
		set = palette.NewSet()
	}
	pal, err := set.Resolve(o.Palette, o.Seed)
	if err != nil {
		return palette.Palette{}, err
	}
	if len(o.Inks) > 0 {
		pal.Inks = append([]string(nil), o.Inks...)
	}
	return pal, nil
}

// GlassParams converts the options into core generation parameters.
func (o *Options) GlassParams(inks []string) glass.Params {
	return glass.Params{
		Seed:              o.Seed,
		Width:             o.Width,
		Height:            o.Height,
		Cells:             o.Cells,
		Palette:           inks,
		Jitter:            o.Jitter,
		Extra:             o.Extra,
		Inset:             o.Inset,
		Network:           glass.Network(o.Network),
		Seam:              attrs.SeamMode(o.Seam),
		MinWidth:          o.MinWidth,
		MaxWidth:          o.MaxWidth,
		DisableEdgeJitter: o.DisableEdgeJitter,
	}
}

// MosaicKeyOpts returns cache key options for mosaic generation.
func (o *Options) MosaicKeyOpts(inks []string) cache.MosaicKeyOpts {
	return cache.MosaicKeyOpts{
		Seed:              o.Seed,
		Width:             o.Width,
		Height:            o.Height,
		Cells:             o.Cells,
		Inks:              inks,
		Jitter:            o.Jitter,
		Extra:             o.Extra,
		Inset:             o.Inset,
		Network:           o.Network,
		Seam:              o.Seam,
		MinWidth:          o.MinWidth,
		MaxWidth:          o.MaxWidth,
		DisableEdgeJitter: o.DisableEdgeJitter,
	}
}

// ArtifactKeyOpts lists the settings that change format's bytes.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Margin:  o.Margin,
		Deckle:  !o.Borderless,
		Streaks: !o.NoStreaks,
		Scale:   o.Scale,
		Labels:  o.Labels,
	}
}

// String summarizes the generation inputs for log lines.
func (o *Options) String() string {
	name := o.Palette
	if name == "" {
		name = "auto"
	}
	return fmt.Sprintf("seed=%d %gx%g cells=%d palette=%s network=%s", o.Seed, o.Width, o.Height, o.Cells, name, o.Network)
}
