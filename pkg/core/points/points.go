// Package points synthesizes the jittered site field a mosaic is cut from.
//
// Sites sit on a grid sized to approximate the requested count while
// keeping the frame's proportions. Each grid center is perturbed
// independently in x and y, and an optional sprinkle of uniformly placed
// extras breaks up the grid. The traversal order is fixed:
//
//  1. rows top to bottom, columns left to right; per site one x draw then one y draw
//  2. extras, each as one x draw then one y draw
//
// That order fixes how the RNG stream is consumed and is part of the
// determinism contract.
package points

import (
	"math"

	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/core/rng"
	"github.com/matzehuels/stainedglass/pkg/errors"
)

const (
	// DefaultJitter is the per-axis jitter as a fraction of the grid cell size.
	DefaultJitter = 0.35

	// MaxJitter keeps every jittered site inside its own grid cell.
	MaxJitter = 0.5

	// DefaultMinCols and DefaultMinRows bound the grid from below, so any
	// count under 9 still yields a 3×3 grid.
	DefaultMinCols = 3
	DefaultMinRows = 3

	// MaxSites bounds the field Generate will build.
	MaxSites = 1 << 22
)

// Options controls point synthesis. Zero values select the defaults,
// except Extra where zero means no extras.
type Options struct {
	Count   int     // target number of sites (≥1)
	Jitter  float64 // fraction of the cell size; ≤0 selects DefaultJitter
	Extra   float64 // extras as a fraction of cols*rows
	MinCols int
	MinRows int
}

// Field is a generated site set.
type Field struct {
	Points []geom.Point
	Cols   int
	Rows   int
	Extras int
}

// Grid returns the (cols, rows) a frame and target count produce.
func Grid(frame geom.Rect, count, minCols, minRows int) (cols, rows int) {
	aspect := frame.Height() / frame.Width()
	cols = max(minCols, int(math.Round(math.Sqrt(float64(count)/aspect))))
	rows = max(minRows, int(math.Round(float64(cols)*aspect)))
	return cols, rows
}

// SiteCount returns how many sites Generate would place for frame and
// opts, saturating at MaxSites+1. It returns 0 for an invalid frame or a
// non-finite Extra.
func SiteCount(frame geom.Rect, opts Options) int {
	if !frame.Valid() || opts.Count < 1 || math.IsNaN(opts.Extra) || math.IsInf(opts.Extra, 0) {
		return 0
	}
	opts = withDefaults(opts)
	aspect := frame.Height() / frame.Width()
	cols := math.Max(float64(opts.MinCols), math.Round(math.Sqrt(float64(opts.Count)/aspect)))
	rows := math.Max(float64(opts.MinRows), math.Round(cols*aspect))
	n := cols*rows + math.Floor(math.Max(opts.Extra, 0)*cols*rows)
	if n > MaxSites {
		return MaxSites + 1
	}
	return int(n)
}

// Generate draws a site field over frame from r.
func Generate(r *rng.RNG, frame geom.Rect, opts Options) (Field, error) {
	if !frame.Valid() {
		return Field{}, errors.New(errors.ErrCodeFrameInvalid,
			"frame must have positive finite dimensions, got %gx%g", frame.Width(), frame.Height())
	}
	if opts.Count < 1 {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "target cell count must be at least 1, got %d", opts.Count)
	}
	if opts.Jitter > MaxJitter {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "jitter must be at most %v, got %v", MaxJitter, opts.Jitter)
	}
	if opts.Extra < 0 || math.IsNaN(opts.Extra) || math.IsInf(opts.Extra, 0) {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "extra fraction must be finite and non-negative, got %v", opts.Extra)
	}
	if n := SiteCount(frame, opts); n > MaxSites {
		return Field{}, errors.New(errors.ErrCodeInvalidInput, "site field too large (max %d sites)", MaxSites)
	}
	opts = withDefaults(opts)

	cols, rows := Grid(frame, opts.Count, opts.MinCols, opts.MinRows)
	gw := frame.Width() / float64(cols)
	gh := frame.Height() / float64(rows)
	jx := opts.Jitter * gw
	jy := opts.Jitter * gh

	extras := int(math.Floor(opts.Extra * float64(cols*rows)))
	pts := make([]geom.Point, 0, cols*rows+extras)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			x := frame.X0 + float64((float64(i)+0.5)*gw) + r.Range(-jx, jx)
			y := frame.Y0 + float64((float64(j)+0.5)*gh) + r.Range(-jy, jy)
			pts = append(pts, geom.Point{X: x, Y: y})
		}
	}
	for k := 0; k < extras; k++ {
		x := r.Range(frame.X0, frame.X1)
		y := r.Range(frame.Y0, frame.Y1)
		pts = append(pts, geom.Point{X: x, Y: y})
	}

	return Field{Points: pts, Cols: cols, Rows: rows, Extras: extras}, nil
}

func withDefaults(opts Options) Options {
	if opts.Jitter <= 0 || math.IsNaN(opts.Jitter) {
		opts.Jitter = DefaultJitter
	}
	if opts.MinCols <= 0 {
		opts.MinCols = DefaultMinCols
	}
	if opts.MinRows <= 0 {
		opts.MinRows = DefaultMinRows
	}
	return opts
}
