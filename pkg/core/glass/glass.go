// Package glass runs the full mosaic generation: site field, tessellation,
// lead network, inset, and attribute draws, all from one seeded stream.
//
// A generation is a pure function of its Params. Each call creates its own
// RNG and fresh output; nothing is shared between calls, so concurrent
// generations need no coordination.
//
// Hosts drive generation through two entry points:
//
//	res, err := glass.Generate(params)   // one-shot
//
//	g := glass.NewGenerator(params)
//	res, err := g.Reseed(1234)           // discard the previous mosaic, regenerate
//	res, err = g.Advance()               // continue with the seed drawn by the last run
package glass

import (
	"math"

	"github.com/matzehuels/stainedglass/pkg/core/attrs"
	"github.com/matzehuels/stainedglass/pkg/core/edges"
	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/core/points"
	"github.com/matzehuels/stainedglass/pkg/core/rng"
	"github.com/matzehuels/stainedglass/pkg/core/tessellate"
)

// nextSeedSpan bounds the follow-up seed drawn after a generation.
const nextSeedSpan = 1e9

// Cell is the record handed to renderers for one piece of glass.
type Cell struct {
	Site      int
	Point     geom.Point
	Polygon   geom.Polygon
	Inset     geom.Polygon
	Centroid  geom.Point
	Area      float64
	Neighbors []int

	ColorIndex int
	Color      string
	Bright     bool
	Material   attrs.Material
	Texture    attrs.Texture
}

// Edge is the record handed to renderers for one lead segment.
type Edge struct {
	A, B      geom.Point
	Owners    []int
	Length    float64
	Degree    int
	Jitter    float64
	Width     float64
	Highlight float64
}

// Result is the output of one generation.
type Result struct {
	Params Params

	Points []geom.Point
	Cols   int
	Rows   int
	Extras int

	Cells     []Cell
	Edges     []Edge
	Triangles []tessellate.Triangle

	// Degenerate is the recovered DEGENERATE_INPUT error when the sites
	// could not be triangulated.
	Degenerate error

	// NextSeed is floor(Range(0, 1e9)) drawn after every other draw.
	NextSeed uint32
}

// Generate runs one generation.
func Generate(p Params) (*Result, error) {
	p, err := p.normalize()
	if err != nil {
		return nil, err
	}
	frame := p.Frame()
	r := rng.New(p.Seed)

	field, err := points.Generate(r, frame, points.Options{Count: p.Cells, Jitter: p.Jitter, Extra: p.Extra})
	if err != nil {
		return nil, err
	}

	tess, err := tessellate.Tessellate(field.Points, frame)
	if err != nil {
		return nil, err
	}
	polys := tess.Polygons()

	var lead []edges.Edge
	if p.Network == NetworkDelaunay && len(tess.Triangles) > 0 {
		lead = edges.FromTriangles(field.Points, tess.Triangles)
	} else {
		lead = edges.FromCells(polys)
	}

	cellAttrs, edgeAttrs, err := attrs.Assign(r, polys, lead, attrs.Options{
		Colors:            len(p.Palette),
		Frame:             frame,
		Seam:              p.Seam,
		MinWidth:          p.MinWidth,
		MaxWidth:          p.MaxWidth,
		DisableEdgeJitter: p.DisableEdgeJitter,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Params:     p,
		Points:     field.Points,
		Cols:       field.Cols,
		Rows:       field.Rows,
		Extras:     field.Extras,
		Triangles:  tess.Triangles,
		Degenerate: tess.Degenerate,
		Cells:      make([]Cell, len(tess.Cells)),
		Edges:      make([]Edge, len(lead)),
	}

	for i, c := range tess.Cells {
		inset, err := geom.Inset(c.Polygon, p.Inset)
		if err != nil {
			return nil, err
		}
		a := cellAttrs[i]
		res.Cells[i] = Cell{
			Site:       c.Site,
			Point:      c.Point,
			Polygon:    c.Polygon,
			Inset:      inset,
			Centroid:   c.Polygon.Centroid(),
			Area:       c.Polygon.Area(),
			Neighbors:  tess.Adjacency[i],
			ColorIndex: a.ColorIndex,
			Color:      p.Palette[a.ColorIndex],
			Bright:     a.Bright,
			Material:   a.Material,
			Texture:    a.Texture,
		}
	}
	for i, e := range lead {
		a := edgeAttrs[i]
		res.Edges[i] = Edge{
			A:         e.A,
			B:         e.B,
			Owners:    e.Owners,
			Length:    a.Length,
			Degree:    a.Degree,
			Jitter:    a.Jitter,
			Width:     a.Width,
			Highlight: a.Highlight,
		}
	}

	res.NextSeed = uint32(math.Floor(r.Range(0, nextSeedSpan)))
	return res, nil
}

// Area returns the summed area of all cells.
func (r *Result) Area() float64 {
	var a float64
	for _, c := range r.Cells {
		a += c.Area
	}
	return a
}

// Generator regenerates a mosaic from fixed Params under changing seeds.
// It is not safe for concurrent use.
type Generator struct {
	Params Params
	last   *Result
}

// NewGenerator returns a Generator for p. Nothing is generated until
// Generate, Reseed, or Advance is called.
func NewGenerator(p Params) *Generator {
	return &Generator{Params: p}
}

// Generate regenerates with the current seed.
func (g *Generator) Generate() (*Result, error) {
	res, err := Generate(g.Params)
	if err != nil {
		return nil, err
	}
	g.last = res
	return res, nil
}

// Reseed discards the previous mosaic and regenerates with seed.
func (g *Generator) Reseed(seed uint32) (*Result, error) {
	g.Params.Seed = seed
	g.last = nil
	return g.Generate()
}

// Advance reseeds with the follow-up seed drawn by the last generation,
// generating the current seed first if nothing has been generated yet.
func (g *Generator) Advance() (*Result, error) {
	if g.last == nil {
		if _, err := g.Generate(); err != nil {
			return nil, err
		}
	}
	return g.Reseed(g.last.NextSeed)
}

// Last returns the most recent result, or nil.
func (g *Generator) Last() *Result {
	return g.last
}
