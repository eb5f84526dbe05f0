package pipeline

import (
	"context"

	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/render/sink"
	"github.com/matzehuels/stainedglass/pkg/render/topology"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, m mosaic.Mosaic, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "render cancelled")
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = sink.RenderSVG(m, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(m, sink.WithScale(opts.Scale), sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, m, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(m)
		case FormatDOT:
			data = []byte(topology.ToDOT(m, topology.Options{Labels: opts.Labels}))
		case FormatTopology:
			data, err = topology.RenderSVG(ctx, topology.ToDOT(m, topology.Options{Labels: opts.Labels}))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.CodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions translates render options for the glass sinks.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithMargin(opts.Margin)}
	if opts.Borderless {
		svgOpts = append(svgOpts, sink.WithoutDeckle())
	}
	if opts.NoStreaks {
		svgOpts = append(svgOpts, sink.WithoutStreaks())
	}
	return svgOpts
}
