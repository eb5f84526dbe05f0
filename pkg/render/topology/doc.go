// Package topology draws the adjacency structure of a mosaic with Graphviz.
//
// Each cell becomes a node pinned at its site and filled with its ink; each
// pair of neighboring cells becomes an undirected edge. The result is the
// Delaunay dual of the glass, useful for inspecting a tessellation without
// the shading of the glass sinks.
//
//	dot := topology.ToDOT(m, topology.Options{Labels: true})
//	svg, err := topology.RenderSVG(ctx, dot)
//
// Layout uses the neato engine with every position fixed, so Graphviz only
// routes and draws. [RenderPDF] and [RenderPNG] convert the SVG with
// rsvg-convert.
package topology
