package tessellate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stainedglass/pkg/core/edges"
	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/core/points"
	"github.com/matzehuels/stainedglass/pkg/core/rng"
	"github.com/matzehuels/stainedglass/pkg/errors"
)

func field(t *testing.T, seed uint32, w, h float64, n int, extra float64) []geom.Point {
	t.Helper()
	f, err := points.Generate(rng.New(seed), geom.Frame(w, h), points.Options{Count: n, Extra: extra})
	require.NoError(t, err)
	return f.Points
}

func TestTessellateGolden(t *testing.T) {
	tests := []struct {
		name                    string
		seed                    uint32
		w, h                    float64
		count                   int
		extra                   float64
		cells, tris             int
		edges, verts, boundary  int
	}{
		{"seed 42", 42, 1000, 1000, 100, 0, 100, 186, 301, 202, 40},
		{"seed 42 with extras", 42, 1000, 1000, 100, 0.15, 115, 216, 346, 232, 43},
		{"seed 7 minimum grid", 7, 900, 900, 9, 0, 9, 12, 28, 20, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := geom.Frame(tt.w, tt.h)
			tess, err := Tessellate(field(t, tt.seed, tt.w, tt.h, tt.count, tt.extra), frame)
			require.NoError(t, err)
			require.NoError(t, tess.Degenerate)

			assert.Len(t, tess.Cells, tt.cells)
			assert.Len(t, tess.Triangles, tt.tris)

			es := edges.FromCells(tess.Polygons())
			assert.Len(t, es, tt.edges)
			assert.Equal(t, tt.verts, edges.Vertices(es))

			boundary := 0
			for _, e := range es {
				if e.Boundary() {
					boundary++
				}
			}
			assert.Equal(t, tt.boundary, boundary)
		})
	}
}

func TestTessellatePartition(t *testing.T) {
	for seed := uint32(1); seed <= 10; seed++ {
		frame := geom.Frame(800, 600)
		tess, err := Tessellate(field(t, seed, 800, 600, 60, 0.15), frame)
		require.NoError(t, err)

		var sum float64
		for _, c := range tess.Cells {
			sum += c.Polygon.Area()
		}
		assert.InDeltaf(t, frame.Area(), sum, frame.Area()*1e-9, "seed %d: cell areas must sum to the frame", seed)

		// Every site lies in its own cell and in no other.
		for i, c := range tess.Cells {
			require.Truef(t, c.Polygon.Contains(c.Point), "seed %d: site %d outside its cell", seed, c.Site)
			for j, o := range tess.Cells {
				if i != j {
					assert.Falsef(t, o.Polygon.Contains(c.Point), "seed %d: site %d inside cell %d", seed, c.Site, o.Site)
				}
			}
		}
	}
}

func TestTessellateEuler(t *testing.T) {
	for seed := uint32(100); seed < 110; seed++ {
		tess, err := Tessellate(field(t, seed, 1000, 700, 80, 0.15), geom.Frame(1000, 700))
		require.NoError(t, err)

		es := edges.FromCells(tess.Polygons())
		v, e, f := edges.Vertices(es), len(es), len(tess.Cells)+1
		assert.Equalf(t, 2, v-e+f, "seed %d: V-E+F for the cell graph", seed)
		assert.LessOrEqual(t, e, 3*v-6)

		// The Delaunay dual obeys the same formula over the sites.
		te := edges.FromTriangles(tess.Points, tess.Triangles)
		assert.Equalf(t, 2, len(tess.Cells)-len(te)+len(tess.Triangles)+1, "seed %d: V-E+F for the triangulation", seed)
	}
}

func TestTriangulateEmptyCircumcircle(t *testing.T) {
	pts := field(t, 42, 1000, 1000, 100, 0)
	del := Triangulate(pts)
	for _, tri := range del.Triangles {
		cx, cy, r2 := circumcircle(pts[tri[0]], pts[tri[1]], pts[tri[2]])
		for i, p := range pts {
			if i == tri[0] || i == tri[1] || i == tri[2] {
				continue
			}
			d := (p.X-cx)*(p.X-cx) + (p.Y-cy)*(p.Y-cy)
			require.GreaterOrEqualf(t, d, r2*(1-1e-9), "point %d inside circumcircle of %v", i, tri)
		}
		assert.Positive(t, geom.Cross(pts[tri[0]], pts[tri[1]], pts[tri[2]]))
	}
}

func TestTessellateAdjacencyMatchesEdges(t *testing.T) {
	tess, err := Tessellate(field(t, 3, 500, 500, 25, 0), geom.Frame(500, 500))
	require.NoError(t, err)

	for i, ns := range tess.Adjacency {
		assert.IsNonDecreasing(t, ns)
		for _, j := range ns {
			assert.Containsf(t, tess.Adjacency[j], i, "adjacency must be symmetric (%d, %d)", i, j)
		}
	}
}

func TestTessellateMergesDuplicates(t *testing.T) {
	pts := []geom.Point{
		{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 50, Y: 90},
		{X: 10.0001, Y: 10.0002}, // merges into 0
		{X: 50, Y: 50},
	}
	tess, err := Tessellate(pts, geom.Frame(100, 100))
	require.NoError(t, err)
	require.NoError(t, tess.Degenerate)

	assert.Len(t, tess.Cells, 4)
	assert.Equal(t, []int{0, 1, 2, 0, 4}, tess.SiteOf)
	assert.Equal(t, 0, tess.CellOf(3).Site)
	assert.Equal(t, 4, tess.CellOf(4).Site)
	for _, tri := range tess.Triangles {
		assert.NotContains(t, tri[:], 3)
	}
}

func TestTessellateDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []geom.Point
	}{
		{"single point", []geom.Point{{X: 5, Y: 5}}},
		{"two points", []geom.Point{{X: 5, Y: 5}, {X: 50, Y: 50}}},
		{"duplicates collapse below three", []geom.Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 50, Y: 50}}},
		{"collinear", []geom.Point{{X: 0, Y: 0}, {X: 25, Y: 25}, {X: 50, Y: 50}, {X: 100, Y: 100}}},
		{"diagonal", []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := geom.Frame(100, 100)
			tess, err := Tessellate(tt.pts, frame)
			require.NoError(t, err)
			require.Len(t, tess.Cells, 1)
			assert.Equal(t, frame.Polygon(), tess.Cells[0].Polygon)
			assert.Equal(t, 0, tess.Cells[0].Site)
			assert.True(t, errors.Is(tess.Degenerate, errors.ErrCodeDegenerateInput))
			assert.Empty(t, tess.Triangles)
			for i := range tt.pts {
				assert.Equal(t, 0, tess.SiteOf[i], "SiteOf[%d]", i)
				assert.Equal(t, 0, tess.CellOf(i).Site, "CellOf(%d)", i)
			}
		})
	}
}

func TestTessellateErrors(t *testing.T) {
	tests := []struct {
		name  string
		pts   []geom.Point
		frame geom.Rect
		code  errors.Code
	}{
		{"invalid frame", []geom.Point{{X: 1, Y: 1}}, geom.Frame(0, 10), errors.ErrCodeFrameInvalid},
		{"nan frame", []geom.Point{{X: 1, Y: 1}}, geom.Frame(math.NaN(), 10), errors.ErrCodeFrameInvalid},
		{"point right of frame", []geom.Point{{X: 1, Y: 1}, {X: 101, Y: 5}}, geom.Frame(100, 100), errors.ErrCodePointOutOfFrame},
		{"point above frame", []geom.Point{{X: 1, Y: -0.5}}, geom.Frame(100, 100), errors.ErrCodePointOutOfFrame},
		{"no points", nil, geom.Frame(100, 100), errors.ErrCodeDegenerateInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tessellate(tt.pts, tt.frame)
			if !errors.Is(err, tt.code) {
				t.Errorf("Tessellate() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestTessellateDeterministic(t *testing.T) {
	pts := field(t, 99, 640, 480, 70, 0.15)
	a, err := Tessellate(pts, geom.Frame(640, 480))
	require.NoError(t, err)
	b, err := Tessellate(pts, geom.Frame(640, 480))
	require.NoError(t, err)
	assert.Equal(t, a.Cells, b.Cells)
	assert.Equal(t, a.Triangles, b.Triangles)
}
