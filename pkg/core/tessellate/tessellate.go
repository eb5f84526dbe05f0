package tessellate

import (
	"slices"

	"github.com/matzehuels/stainedglass/pkg/core/edges"
	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/errors"
)

// Cell is one region of the partition.
type Cell struct {
	Site    int          // index of the owning point in the input list
	Point   geom.Point   // the owning point
	Polygon geom.Polygon // convex ring clipped to the frame
}

// Tessellation is the clipped Voronoi partition of a frame and its dual.
type Tessellation struct {
	Frame  geom.Rect
	Points []geom.Point // input points as given

	// SiteOf maps every input index to the index of the point that owns its
	// cell. Merged duplicates map to the first point sharing their key. In
	// a degenerate tessellation every index maps to the single owner.
	SiteOf []int

	// Cells holds one cell per distinct site, in ascending site order.
	Cells []Cell

	// Triangles holds the Delaunay triangles over input indices.
	Triangles []Triangle

	// Adjacency maps a cell index to the sorted indices of the cells that
	// share a boundary segment with it.
	Adjacency map[int][]int

	// Degenerate is non-nil when the input could not be triangulated and
	// the frame was returned as a single cell.
	Degenerate error
}

// CellOf returns the cell owning input point i.
func (t *Tessellation) CellOf(i int) *Cell {
	site := t.SiteOf[i]
	k, _ := slices.BinarySearchFunc(t.Cells, site, func(c Cell, s int) int { return c.Site - s })
	return &t.Cells[k]
}

// Polygons returns the cell polygons in cell order.
func (t *Tessellation) Polygons() []geom.Polygon {
	out := make([]geom.Polygon, len(t.Cells))
	for i, c := range t.Cells {
		out[i] = c.Polygon
	}
	return out
}

// Tessellate partitions frame around pts.
func Tessellate(pts []geom.Point, frame geom.Rect) (*Tessellation, error) {
	if !frame.Valid() {
		return nil, errors.New(errors.ErrCodeFrameInvalid,
			"frame must have positive finite dimensions, got %gx%g", frame.Width(), frame.Height())
	}
	if len(pts) == 0 {
		return nil, errors.New(errors.ErrCodeDegenerateInput, "no points to tessellate")
	}
	for i, p := range pts {
		if !frame.Contains(p) {
			return nil, errors.New(errors.ErrCodePointOutOfFrame,
				"point %d (%g, %g) lies outside frame [%g,%g]x[%g,%g]",
				i, p.X, p.Y, frame.X0, frame.X1, frame.Y0, frame.Y1)
		}
	}

	t := &Tessellation{Frame: frame, Points: pts, SiteOf: make([]int, len(pts))}

	// sites[k] is the input index of the k-th distinct point.
	var sites []int
	seen := make(map[geom.Key]int, len(pts))
	for i, p := range pts {
		k := geom.Quantize(p)
		if first, ok := seen[k]; ok {
			t.SiteOf[i] = first
			continue
		}
		seen[k] = i
		t.SiteOf[i] = i
		sites = append(sites, i)
	}

	unique := make([]geom.Point, len(sites))
	for k, i := range sites {
		unique[k] = pts[i]
	}

	if len(unique) < 3 || collinear(unique) {
		t.Degenerate = errors.New(errors.ErrCodeDegenerateInput,
			"%d distinct points cannot be triangulated, using the frame as a single cell", len(unique))
		t.Cells = []Cell{{Site: sites[0], Point: unique[0], Polygon: frame.Polygon()}}
		for i := range t.SiteOf {
			t.SiteOf[i] = sites[0]
		}
		t.Adjacency = map[int][]int{}
		return t, nil
	}

	del := Triangulate(unique)
	t.Triangles = make([]Triangle, len(del.Triangles))
	for k, tri := range del.Triangles {
		t.Triangles[k] = Triangle{sites[tri[0]], sites[tri[1]], sites[tri[2]]}
	}

	t.Cells = make([]Cell, len(unique))
	for k, s := range unique {
		t.Cells[k] = Cell{Site: sites[k], Point: s, Polygon: voronoiCell(frame, unique, k, del.Neighbors[k])}
	}

	t.Adjacency = edges.Adjacency(edges.FromCells(t.Polygons()))
	for k := range t.Adjacency {
		slices.Sort(t.Adjacency[k])
	}
	return t, nil
}

// voronoiCell clips the frame by the bisector half-planes between site k
// and each of its neighbors.
func voronoiCell(frame geom.Rect, sites []geom.Point, k int, neighbors []int) geom.Polygon {
	s := sites[k]
	poly := frame.Polygon()
	for _, j := range neighbors {
		o := sites[j]
		a := o.X - s.X
		b := o.Y - s.Y
		c := (float64(o.X*o.X) + float64(o.Y*o.Y) - float64(s.X*s.X) - float64(s.Y*s.Y)) / 2
		poly = poly.ClipHalfPlane(a, b, c)
		if len(poly) == 0 {
			break
		}
	}
	return poly.Compact()
}

func collinear(pts []geom.Point) bool {
	a, b := pts[0], pts[1]
	for _, p := range pts[2:] {
		if geom.Cross(a, b, p) != 0 {
			return false
		}
	}
	return true
}
