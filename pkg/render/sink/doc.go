// Package sink renders a [mosaic.Mosaic] into output formats.
//
// # Overview
//
// Every sink paints the same scene:
//
//  1. Background in the palette's background color, with a canvas margin
//     of [DefaultMargin] times the shorter frame side
//  2. A soft deckle border fading inward across the margin
//  3. One radial gradient per piece of glass, centred on the cell centroid
//     shifted by the cell's texture offset, with parallel highlight streaks
//     clipped to the cell
//  4. The lead network on top
//
// The voronoi network paints the lead as a wide dark seam under every
// boundary, then each edge at its drawn width with a thin glint. The
// delaunay network fills the triangles instead of the cells and paints
// its lead with a drop shadow.
//
// # Formats
//
//   - [RenderSVG]: standalone SVG document
//   - [RenderPNG]: pure-Go raster via fogleman/gg
//   - [RenderPDF]: the SVG converted by rsvg-convert
//   - [RenderJSON]: the serialized mosaic
//
// Basic usage:
//
//	svg, err := sink.RenderSVG(m, sink.WithMargin(0), sink.WithoutDeckle())
//	png, err := sink.RenderPNG(m, sink.WithScale(2))
//
// [mosaic.Mosaic]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/mosaic#Mosaic
package sink
