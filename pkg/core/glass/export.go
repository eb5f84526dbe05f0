package glass

import (
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/palette"
)

// Export converts the result into the serialized mosaic format. The
// palette carries only the inks from Params; callers that know the full
// palette replace it.
func (r *Result) Export() mosaic.Mosaic {
	m := mosaic.Mosaic{
		Version:  mosaic.FormatVersion,
		Seed:     r.Params.Seed,
		NextSeed: r.NextSeed,
		Width:    r.Params.Width,
		Height:   r.Params.Height,
		Network:  string(r.Params.Network),
		Seam:     string(r.Params.Seam),
		Inset:    r.Params.Inset,
		Palette:  palette.Palette{Inks: append([]string(nil), r.Params.Palette...)},
		Cols:     r.Cols,
		Rows:     r.Rows,
		Points:   r.Points,
		Cells:    make([]mosaic.Cell, len(r.Cells)),
		Edges:    make([]mosaic.Edge, len(r.Edges)),
	}
	if len(r.Triangles) > 0 {
		m.Triangles = make([][3]int, len(r.Triangles))
		copy(m.Triangles, r.Triangles)
	}
	if r.Degenerate != nil {
		m.Degenerate = r.Degenerate.Error()
	}

	for i, c := range r.Cells {
		m.Cells[i] = mosaic.Cell{
			Site:       c.Site,
			Point:      c.Point,
			Polygon:    c.Polygon,
			Inset:      c.Inset,
			Centroid:   c.Centroid,
			Area:       c.Area,
			Neighbors:  c.Neighbors,
			ColorIndex: c.ColorIndex,
			Color:      c.Color,
			Bright:     c.Bright,
			Material:   c.Material,
			Texture:    c.Texture,
		}
	}
	for i, e := range r.Edges {
		m.Edges[i] = mosaic.Edge{
			A:         e.A,
			B:         e.B,
			Owners:    e.Owners,
			Length:    e.Length,
			Degree:    e.Degree,
			Jitter:    e.Jitter,
			Width:     e.Width,
			Highlight: e.Highlight,
		}
	}
	return m
}
