package tessellate

import (
	"math"
	"slices"

	"github.com/matzehuels/stainedglass/pkg/core/geom"
)

// superScale places the super-triangle vertices this many frame spans away
// from the point cloud, far enough that every Delaunay edge whose Voronoi
// edge can reach the frame survives the final cleanup.
const superScale = 100.0

// Triangle holds three point indices in counter-clockwise order
// (with y pointing down, "counter-clockwise" means a positive cross product).
type Triangle = [3]int

type tri struct {
	v      Triangle
	cx, cy float64 // circumcenter
	r2     float64 // squared circumradius; +Inf for degenerate triangles
}

// Delaunay is a Bowyer–Watson triangulation over a point set.
type Delaunay struct {
	// Triangles lists triangles whose three vertices are real points.
	Triangles []Triangle

	// Neighbors lists, per point, the ascending indices of every point it
	// shares a triangle edge with, including edges of triangles that touch
	// the super triangle.
	Neighbors [][]int
}

// Triangulate computes the Delaunay triangulation of pts by incremental
// insertion in index order. pts must not contain duplicates.
func Triangulate(pts []geom.Point) *Delaunay {
	n := len(pts)
	verts := make([]geom.Point, n, n+3)
	copy(verts, pts)

	b := geom.Polygon(pts).Bounds()
	span := math.Max(b.Width(), b.Height())
	if span == 0 {
		span = 1
	}
	mx, my := (b.X0+b.X1)/2, (b.Y0+b.Y1)/2
	d := span * superScale
	verts = append(verts,
		geom.Point{X: mx - 2*d, Y: my - d},
		geom.Point{X: mx + 2*d, Y: my - d},
		geom.Point{X: mx, Y: my + 2*d},
	)

	tris := []tri{newTri(verts, n, n+1, n+2)}
	for i := 0; i < n; i++ {
		tris = insert(verts, tris, i)
	}

	del := &Delaunay{Neighbors: make([][]int, n)}
	for _, t := range tris {
		inside := t.v[0] < n && t.v[1] < n && t.v[2] < n
		if inside {
			del.Triangles = append(del.Triangles, t.v)
		}
		for k := 0; k < 3; k++ {
			a, b := t.v[k], t.v[(k+1)%3]
			if a < n && b < n {
				del.Neighbors[a] = append(del.Neighbors[a], b)
				del.Neighbors[b] = append(del.Neighbors[b], a)
			}
		}
	}
	for i := range del.Neighbors {
		slices.Sort(del.Neighbors[i])
		del.Neighbors[i] = slices.Compact(del.Neighbors[i])
	}
	return del
}

// insert adds point i, replacing every triangle whose circumcircle holds it
// with a fan around the cavity boundary.
func insert(verts []geom.Point, tris []tri, i int) []tri {
	p := verts[i]

	type edge struct{ a, b int }
	var (
		boundary []edge
		count    = make(map[edge]int)
		kept     = tris[:0:0]
	)
	for _, t := range tris {
		dx, dy := p.X-t.cx, p.Y-t.cy
		if float64(dx*dx)+float64(dy*dy) < t.r2 {
			for k := 0; k < 3; k++ {
				e := edge{t.v[k], t.v[(k+1)%3]}
				if e.a > e.b {
					e.a, e.b = e.b, e.a
				}
				if count[e] == 0 {
					boundary = append(boundary, e)
				}
				count[e]++
			}
			continue
		}
		kept = append(kept, t)
	}

	for _, e := range boundary {
		if count[e] == 1 {
			kept = append(kept, newTri(verts, e.a, e.b, i))
		}
	}
	return kept
}

// newTri builds a counter-clockwise triangle with its circumcircle.
func newTri(verts []geom.Point, a, b, c int) tri {
	if geom.Cross(verts[a], verts[b], verts[c]) < 0 {
		b, c = c, b
	}
	t := tri{v: Triangle{a, b, c}}
	t.cx, t.cy, t.r2 = circumcircle(verts[a], verts[b], verts[c])
	return t
}

// circumcircle returns the center and squared radius of the circle through
// a, b, c. Collinear input yields an infinite radius so the triangle is
// replaced by the next insertion that sees it.
func circumcircle(a, b, c geom.Point) (cx, cy, r2 float64) {
	bx, by := b.X-a.X, b.Y-a.Y
	qx, qy := c.X-a.X, c.Y-a.Y
	d := 2 * (float64(bx*qy) - float64(by*qx))
	if d == 0 {
		return a.X, a.Y, math.Inf(1)
	}
	bl := float64(bx*bx) + float64(by*by)
	cl := float64(qx*qx) + float64(qy*qy)
	ux := (float64(qy*bl) - float64(by*cl)) / d
	uy := (float64(bx*cl) - float64(qx*bl)) / d
	return a.X + ux, a.Y + uy, float64(ux*ux) + float64(uy*uy)
}
