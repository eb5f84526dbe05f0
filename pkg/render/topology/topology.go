package topology

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/render"
)

// Options configures topology rendering.
type Options struct {
	// Labels prints each cell index inside its node.
	Labels bool
}

// ToDOT converts a mosaic to an undirected Graphviz graph with pinned node
// positions. Graphviz puts the origin at the bottom left, so y is flipped.
func ToDOT(m mosaic.Mosaic, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if m.Palette.Background != "" {
		fmt.Fprintf(&buf, "  bgcolor=%q;\n", m.Palette.Background)
	}
	if opts.Labels {
		buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.3, fontsize=9];\n")
	} else {
		buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.15, label=\"\"];\n")
	}
	line := m.Palette.Line
	if line == "" {
		line = "black"
	}
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=1.2];\n", line)
	buf.WriteString("\n")

	for i, c := range m.Cells {
		attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\"", c.Point.X, m.Height-c.Point.Y)
		if c.Color != "" {
			attrs += fmt.Sprintf(", fillcolor=%q", c.Color)
		}
		if opts.Labels {
			attrs += fmt.Sprintf(", label=\"%d\"", i)
		}
		fmt.Fprintf(&buf, "  \"c%d\" [%s];\n", i, attrs)
	}

	buf.WriteString("\n")
	for i, c := range m.Cells {
		for _, j := range c.Neighbors {
			if j > i {
				fmt.Fprintf(&buf, "  \"c%d\" -- \"c%d\";\n", i, j)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out and renders a DOT graph to SVG using Graphviz's neato
// engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render topology")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPDF renders a DOT graph to PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph to PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in user units, so the SVG scales like the glass sinks.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
