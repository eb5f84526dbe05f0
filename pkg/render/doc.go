// Package render turns generated mosaics into output files.
//
// # Overview
//
// Rendering is split across subpackages:
//
//   - [sink]: the glass itself as SVG, PNG, PDF, or JSON
//   - [topology]: the Delaunay dual of a mosaic drawn by Graphviz
//
// This package holds the format conversion shared by both.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG document with the external
// rsvg-convert tool from librsvg:
//
//	svg, err := sink.RenderSVG(m)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// The PNG sink rasterizes in pure Go and does not need rsvg-convert; the
// PDF sink and the topology rasters do. [Available] reports whether the
// tool is installed so hosts can hide those formats up front.
//
// [sink]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/render/sink
// [topology]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/render/topology
package render
