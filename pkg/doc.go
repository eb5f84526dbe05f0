// Package pkg provides the core libraries for stainedglass, a generator of
// procedural stained-glass mosaics.
//
// # Overview
//
// A mosaic is a rectangular frame partitioned into Voronoi cells around
// jittered grid sites, each cell filled with a glass ink and bounded by
// lead came of varying width. Everything is derived from a single 32-bit
// seed, so the same seed and parameters always yield the same picture.
//
// # Architecture
//
// The typical data flow:
//
//	seed + parameters
//	         ↓
//	    [core/points] (jittered grid sites)
//	         ↓
//	    [core/tessellate] (Delaunay triangulation + Voronoi cells)
//	         ↓
//	    [core/glass] (inks, inset panes, lead network)
//	         ↓
//	    [mosaic] (serializable result)
//	         ↓
//	    [render/sink] SVG/PNG/PDF/JSON, [render/topology] DOT/SVG
//
// [pipeline] ties the stages together with caching and is shared by the
// CLI, the HTTP server, and the terminal preview.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/stainedglass/pkg/core/glass"
//	    "github.com/matzehuels/stainedglass/pkg/palette"
//	    "github.com/matzehuels/stainedglass/pkg/render/sink"
//	)
//
//	pal := palette.Pick(42)
//	res, _ := glass.Generate(glass.Params{
//	    Seed:    42,
//	    Width:   1000,
//	    Height:  1000,
//	    Cells:   100,
//	    Palette: pal.Inks,
//	})
//	m := res.Export()
//	m.Palette = pal
//	svg, _ := sink.RenderSVG(m)
//
// # Main Packages
//
// ## Core
//
// [core/rng] - The seeded generator every random draw comes from. Draw order
// is part of the output contract.
//
// [core/geom] - Points, rectangles, convex polygons, clipping, and insets.
//
// [core/tessellate] - Bowyer-Watson triangulation and frame-clipped Voronoi
// cells.
//
// [core/glass] - Mosaic generation: sites, cells, and the lead network.
//
// ## Data
//
// [mosaic] - The serializable mosaic and its JSON codec.
//
// [palette] - Named ink palettes, built-in and loaded from TOML.
//
// ## Output
//
// [render] - SVG conversion to PDF and PNG via rsvg-convert.
//
// ## Infrastructure
//
// [pipeline] - Generate → render orchestration, batches, and sessions.
//
// [cache] - File, Redis, and null caches keyed by hashed parameters.
//
// [observability] - Hooks for pipeline, cache, and HTTP events.
//
// [errors] - Coded errors mapped to exit codes and HTTP statuses.
//
// [core/rng]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/core/rng
// [core/geom]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/core/geom
// [core/points]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/core/points
// [core/tessellate]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/core/tessellate
// [core/glass]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/core/glass
// [mosaic]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/mosaic
// [palette]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/palette
// [render]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/render/sink
// [render/topology]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/render/topology
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stainedglass/pkg/errors
package pkg
