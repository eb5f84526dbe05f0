package sink

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/palette"
)

// DefaultMargin is the canvas margin around the frame as a fraction of the
// shorter frame side.
const DefaultMargin = 0.06

const (
	fallbackBackground = "#ffffff"
	fallbackLine       = "#141e23"

	deckleSteps    = 28
	deckleMaxAlpha = 20.0 / 255

	inkAlpha    = 220.0 / 255
	brightAlpha = 245.0 / 255

	gradientInner = 2.0
	gradientReach = 0.9

	streakAlpha = 0.06 * 0.5
	streakWidth = 1.2

	seamWidth     = 10.0
	seamAlpha     = 0.9
	coreAlpha     = 0.95
	glintAlpha    = 0.25
	shadowOffset  = 4.0
	shadowGrow    = 3.0
	shadowAlpha   = 70.0 / 255
	triGlintAlpha = 220.0 / 255
)

var (
	white  = colorful.Color{R: 1, G: 1, B: 1}
	shadow = colorful.Color{R: 30.0 / 255, G: 30.0 / 255, B: 30.0 / 255}
)

// stop is one radial gradient stop.
type stop struct {
	offset float64
	color  colorful.Color
	alpha  float64
}

// pane is one filled glass shape in canvas coordinates.
type pane struct {
	poly    geom.Polygon
	center  geom.Point
	radius  float64
	opacity float64
	stops   [3]stop
	streaks []segment
}

type segment struct{ a, b geom.Point }

// stroke is one lead line in canvas coordinates, in paint order.
type stroke struct {
	segment
	color colorful.Color
	alpha float64
	width float64
}

// scene is a mosaic resolved into paint operations shared by every sink.
type scene struct {
	width, height float64
	background    colorful.Color
	line          colorful.Color
	deckle        bool
	panes         []pane
	strokes       []stroke
}

// options are the settings common to the vector and raster sinks.
type options struct {
	margin  float64
	deckle  bool
	streaks bool
}

func defaultOptions() options {
	return options{margin: DefaultMargin, deckle: true, streaks: true}
}

func buildScene(m mosaic.Mosaic, o options) (scene, error) {
	if err := m.Validate(); err != nil {
		return scene{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "render mosaic")
	}
	if !(o.margin >= 0) || math.IsInf(o.margin, 0) {
		return scene{}, errors.New(errors.ErrCodeInvalidInput, "margin must be finite and non-negative, got %g", o.margin)
	}

	bg, err := colorOr(m.Palette.Background, fallbackBackground)
	if err != nil {
		return scene{}, err
	}
	line, err := colorOr(m.Palette.Line, fallbackLine)
	if err != nil {
		return scene{}, err
	}

	pad := o.margin * math.Min(m.Width, m.Height)
	off := geom.Pt(pad, pad)
	s := scene{
		width:      m.Width + 2*pad,
		height:     m.Height + 2*pad,
		background: bg,
		line:       line,
		deckle:     o.deckle,
	}

	if m.IsDelaunay() && len(m.Triangles) > 0 {
		s.panes, err = trianglePanes(m, off)
	} else {
		s.panes, err = cellPanes(m, off, o.streaks)
	}
	if err != nil {
		return scene{}, err
	}

	if m.IsDelaunay() {
		s.strokes = triangleLead(m, off, line)
	} else {
		s.strokes = cellLead(m, off, line)
	}
	return s, nil
}

func cellPanes(m mosaic.Mosaic, off geom.Point, streaks bool) ([]pane, error) {
	panes := make([]pane, 0, len(m.Cells))
	for _, c := range m.Cells {
		poly := c.Inset
		if len(poly) < 3 {
			poly = c.Polygon
		}
		p, err := newPane(m.Palette, c, translate(poly, off), c.Centroid.Add(off), c.Area)
		if err != nil {
			return nil, err
		}
		if streaks {
			p.streaks = streakLines(c.Centroid.Add(off), p.radius, c.Texture.StreakAngle, c.Texture.Streaks)
		}
		panes = append(panes, p)
	}
	return panes, nil
}

// trianglePanes fills each Delaunay triangle with the glass of the cell at
// its first vertex.
func trianglePanes(m mosaic.Mosaic, off geom.Point) ([]pane, error) {
	bySite := make(map[int]int, len(m.Cells))
	for i, c := range m.Cells {
		bySite[c.Site] = i
	}

	panes := make([]pane, 0, len(m.Triangles))
	for _, t := range m.Triangles {
		ci, ok := bySite[t[0]]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "triangle vertex %d has no cell", t[0])
		}
		tri := geom.Polygon{m.Points[t[0]], m.Points[t[1]], m.Points[t[2]]}
		p, err := newPane(m.Palette, m.Cells[ci], translate(tri, off), tri.Centroid().Add(off), tri.Area())
		if err != nil {
			return nil, err
		}
		panes = append(panes, p)
	}
	return panes, nil
}

func newPane(pal palette.Palette, c mosaic.Cell, poly geom.Polygon, centroid geom.Point, area float64) (pane, error) {
	shade, err := pal.ShadeOf(c.ColorIndex, c.Bright)
	if err != nil {
		return pane{}, err
	}
	opacity := inkAlpha
	if c.Bright {
		opacity = brightAlpha
	}
	return pane{
		poly:    poly,
		center:  centroid.Add(geom.Pt(c.Texture.OffsetX, c.Texture.OffsetY)),
		radius:  math.Max(gradientInner, gradientReach*math.Sqrt(area)),
		opacity: opacity,
		stops: [3]stop{
			{offset: 0, color: shade.Mid, alpha: 0.95},
			{offset: 0.65, color: shade.Base, alpha: 0.9},
			{offset: 1, color: shade.Edge, alpha: 0.95},
		},
	}, nil
}

// streakLines spreads n parallel chords of length 2r across a square of
// side 2r centred on c and rotated by angle.
func streakLines(c geom.Point, r, angle float64, n int) []segment {
	if n <= 0 {
		return nil
	}
	cos, sin := math.Cos(angle), math.Sin(angle)
	out := make([]segment, n)
	for i := range out {
		var off float64
		if n > 1 {
			off = -r + 2*r*float64(i)/float64(n-1)
		}
		out[i] = segment{
			a: geom.Pt(c.X-cos*r+sin*off, c.Y-sin*r-cos*off),
			b: geom.Pt(c.X+cos*r+sin*off, c.Y+sin*r-cos*off),
		}
	}
	return out
}

// cellLead paints a wide dark seam under every edge, then each edge's own
// width and its glint on top.
func cellLead(m mosaic.Mosaic, off geom.Point, line colorful.Color) []stroke {
	out := make([]stroke, 0, 3*len(m.Edges))
	for _, e := range m.Edges {
		out = append(out, stroke{segment: edgeSegment(e, off), color: line, alpha: seamAlpha, width: seamWidth})
	}
	for _, e := range m.Edges {
		seg := edgeSegment(e, off)
		out = append(out,
			stroke{segment: seg, color: line, alpha: coreAlpha, width: e.Width},
			stroke{segment: seg, color: white, alpha: glintAlpha, width: e.Highlight},
		)
	}
	return out
}

// triangleLead paints a drop shadow, the lead core, and a raised glint as
// three separate passes.
func triangleLead(m mosaic.Mosaic, off geom.Point, line colorful.Color) []stroke {
	out := make([]stroke, 0, 3*len(m.Edges))
	down := off.Add(geom.Pt(shadowOffset, shadowOffset))
	up := off.Add(geom.Pt(-1, -1))
	for _, e := range m.Edges {
		out = append(out, stroke{segment: edgeSegment(e, down), color: shadow, alpha: shadowAlpha, width: e.Width + shadowGrow})
	}
	for _, e := range m.Edges {
		out = append(out, stroke{segment: edgeSegment(e, off), color: line, alpha: 1, width: e.Width})
	}
	for _, e := range m.Edges {
		out = append(out, stroke{segment: edgeSegment(e, up), color: white, alpha: triGlintAlpha, width: e.Highlight})
	}
	return out
}

// deckleAlpha is the stroke alpha of deckle ring i, fading outward in.
func deckleAlpha(i int) float64 {
	return deckleMaxAlpha * (1 - float64(i)/float64(deckleSteps-1))
}

func edgeSegment(e mosaic.Edge, off geom.Point) segment {
	return segment{a: e.A.Add(off), b: e.B.Add(off)}
}

func translate(poly geom.Polygon, off geom.Point) geom.Polygon {
	out := make(geom.Polygon, len(poly))
	for i, p := range poly {
		out[i] = p.Add(off)
	}
	return out
}

func colorOr(hex, fallback string) (colorful.Color, error) {
	if hex == "" {
		hex = fallback
	}
	return palette.Parse(hex)
}
