// Package attrs draws the per-cell and per-edge visual parameters of a
// mosaic from the generation's RNG stream.
//
// Every draw shares one stream, so the order below is a compatibility
// contract: moving, adding, or removing a draw changes every value after it.
// Per cell, in cell order:
//
//  1. ColorIndex   floor(Range(0, colors))
//  2. Bright       Next() < 0.5
//  3. Roughness    Range(0.15, 0.45)
//  4. IOR          Range(1.48, 1.55)
//  5. Thickness    Range(0.01, 0.06)
//  6. Attenuation  Range(0.3, 1.2)
//  7. OffsetX      Range(-8, 8)
//  8. OffsetY      Range(-8, 8)
//  9. StreakAngle  Range(0, 2π)
//  10. Streaks     12 + floor(Range(0, 10))
//
// Then, once all cells are drawn, one Jitter draw per edge in edge order
// (0.85 + 0.4*Next()) unless edge jitter is disabled.
//
// The palette size only scales draw 1; it never changes how many draws are
// taken, so swapping palettes leaves geometry and every other draw intact.
package attrs

import (
	"math"

	"github.com/matzehuels/stainedglass/pkg/core/edges"
	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/core/rng"
	"github.com/matzehuels/stainedglass/pkg/errors"
)

// SeamMode selects how lead width varies across the network.
type SeamMode string

const (
	// SeamLength thins long seams and thickens short ones.
	SeamLength SeamMode = "length"
	// SeamJunction thickens seams whose endpoints join many cells.
	SeamJunction SeamMode = "junction"
)

// SeamModes lists the supported modes.
var SeamModes = []SeamMode{SeamLength, SeamJunction}

// ParseSeamMode validates a mode name. The empty string selects DefaultSeam.
func ParseSeamMode(s string) (SeamMode, error) {
	if s == "" {
		return DefaultSeam, nil
	}
	for _, m := range SeamModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidSeam, "unknown seam mode %q (want length or junction)", s)
}

const (
	DefaultSeam     = SeamLength
	DefaultMinWidth = 3.0
	DefaultMaxWidth = 6.0

	// lengthSpan is the fraction of the frame's long side at which a seam
	// reaches MinWidth in length mode.
	lengthSpan = 0.2
)

// Material holds the physical glass parameters consumed by 3D renderers.
type Material struct {
	Roughness   float64 `json:"roughness"`
	IOR         float64 `json:"ior"`
	Thickness   float64 `json:"thickness"`
	Attenuation float64 `json:"attenuation"`
}

// Texture holds the 2D shading parameters: gradient centre offset and
// highlight streaks.
type Texture struct {
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
	StreakAngle float64 `json:"streak_angle"`
	Streaks     int     `json:"streaks"`
}

// Cell is the attribute record for one cell.
type Cell struct {
	ColorIndex int
	Bright     bool
	Material   Material
	Texture    Texture
}

// Edge is the attribute record for one lead edge.
type Edge struct {
	Length    float64
	Degree    int // largest junction degree of the two endpoints
	Jitter    float64
	Width     float64
	Highlight float64
}

// Options configures Assign.
type Options struct {
	Colors   int       // palette size (≥1)
	Frame    geom.Rect // scales length-mode widths
	Seam     SeamMode  // empty selects DefaultSeam
	MinWidth float64   // ≤0 selects DefaultMinWidth
	MaxWidth float64   // ≤0 selects DefaultMaxWidth

	DisableEdgeJitter bool
}

// Assign draws attributes for cells (in order) and then for es (in order).
func Assign(r *rng.RNG, cells []geom.Polygon, es []edges.Edge, opts Options) ([]Cell, []Edge, error) {
	if opts.Colors < 1 {
		return nil, nil, errors.New(errors.ErrCodeInvalidPalette, "palette must hold at least one color")
	}
	mode, err := ParseSeamMode(string(opts.Seam))
	if err != nil {
		return nil, nil, err
	}
	minW, maxW := opts.MinWidth, opts.MaxWidth
	if minW <= 0 {
		minW = DefaultMinWidth
	}
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if minW > maxW {
		return nil, nil, errors.New(errors.ErrCodeInvalidSeam, "seam min width %v exceeds max width %v", minW, maxW)
	}
	if mode == SeamLength && !opts.Frame.Valid() {
		return nil, nil, errors.New(errors.ErrCodeFrameInvalid, "length seam mode needs a valid frame")
	}

	outCells := make([]Cell, len(cells))
	for i := range cells {
		outCells[i] = drawCell(r, opts.Colors)
	}

	var deg map[geom.Key]int
	if len(es) > 0 {
		deg = edges.JunctionDegree(es)
	}
	span := lengthSpan * math.Max(opts.Frame.Width(), opts.Frame.Height())

	outEdges := make([]Edge, len(es))
	for i, e := range es {
		k := e.Key()
		rec := Edge{
			Length: e.Length(),
			Degree: max(deg[k.A], deg[k.B]),
			Jitter: 1,
		}
		if !opts.DisableEdgeJitter {
			rec.Jitter = 0.85 + float64(0.4*r.Next())
		}

		var w float64
		switch mode {
		case SeamJunction:
			w = minW + float64((maxW-minW)*clamp01(float64(rec.Degree-2)/2))
		default:
			w = maxW + float64((minW-maxW)*clamp01(rec.Length/span))
		}
		rec.Width = w * rec.Jitter
		rec.Highlight = math.Max(1, 0.45*rec.Width)
		outEdges[i] = rec
	}
	return outCells, outEdges, nil
}

func drawCell(r *rng.RNG, colors int) Cell {
	var c Cell
	c.ColorIndex = r.Intn(colors)
	c.Bright = r.Next() < 0.5
	c.Material.Roughness = r.Range(0.15, 0.45)
	c.Material.IOR = r.Range(1.48, 1.55)
	c.Material.Thickness = r.Range(0.01, 0.06)
	c.Material.Attenuation = r.Range(0.3, 1.2)
	c.Texture.OffsetX = r.Range(-8, 8)
	c.Texture.OffsetY = r.Range(-8, 8)
	c.Texture.StreakAngle = r.Range(0, 2*math.Pi)
	c.Texture.Streaks = 12 + int(math.Floor(r.Range(0, 10)))
	return c
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
