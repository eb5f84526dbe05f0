// Package tessellate partitions a rectangular frame into Voronoi cells
// around a set of sites and exposes the dual Delaunay triangulation.
//
// # Algorithm
//
// The triangulation is built by Bowyer–Watson incremental insertion in
// site order, starting from a super triangle far outside the frame. Each
// Voronoi cell is then cut out of the frame rectangle by intersecting it
// with the perpendicular-bisector half-plane of every Delaunay neighbor,
// neighbors visited in ascending index order. Because the frame is convex
// and every half-plane is convex, every cell is a convex polygon and the
// cells tile the frame exactly.
//
// Neighbors connected only through triangles that touch the super triangle
// are kept: their bisectors can still cross the frame near its border.
//
// # Degeneracies
//
// Sites closer than [geom.Quantum] on both axes are merged and the first
// one wins; [Tessellation.SiteOf] maps every input index to its surviving
// site. A site outside the frame is a caller error (POINT_OUT_OF_FRAME).
// Fewer than three distinct sites, or sites on one line, produce a single
// cell covering the frame and record a DEGENERATE_INPUT error in
// [Tessellation.Degenerate] instead of failing. Every input index then maps
// to that one cell.
//
// # Usage
//
//	t, err := tessellate.Tessellate(pts, geom.Frame(1000, 1000))
//	if err != nil {
//	    return err
//	}
//	for _, c := range t.Cells {
//	    fmt.Println(c.Site, c.Polygon.Area())
//	}
package tessellate
