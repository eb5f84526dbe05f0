package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
)

// SVGOption configures SVG rendering.
type SVGOption func(*options)

// WithMargin sets the canvas margin as a fraction of the shorter frame side.
// Zero renders the frame edge to edge.
func WithMargin(frac float64) SVGOption { return func(o *options) { o.margin = frac } }

// WithoutDeckle drops the soft border drawn in the margin.
func WithoutDeckle() SVGOption { return func(o *options) { o.deckle = false } }

// WithoutStreaks drops the highlight streaks across each cell.
func WithoutStreaks() SVGOption { return func(o *options) { o.streaks = false } }

// RenderSVG renders the mosaic as a standalone SVG document.
func RenderSVG(m mosaic.Mosaic, opts ...SVGOption) ([]byte, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s, err := buildScene(m, o)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.width, s.height, s.width, s.height)

	renderDefs(&buf, s.panes)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="%s"/>`+"\n", s.width, s.height, s.background.Hex())
	if s.deckle {
		renderDeckle(&buf, s)
	}
	renderPanes(&buf, s.panes)
	renderLead(&buf, s.strokes)

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func renderDefs(buf *bytes.Buffer, panes []pane) {
	buf.WriteString("  <defs>\n")
	for i, p := range panes {
		fmt.Fprintf(buf, `    <radialGradient id="glass-%d" gradientUnits="userSpaceOnUse" cx="%.2f" cy="%.2f" fr="%.1f" r="%.2f">`+"\n",
			i, p.center.X, p.center.Y, gradientInner, p.radius)
		for _, st := range p.stops {
			fmt.Fprintf(buf, `      <stop offset="%.2f" stop-color="%s" stop-opacity="%.2f"/>`+"\n",
				st.offset, st.color.Hex(), st.alpha)
		}
		buf.WriteString("    </radialGradient>\n")
		if len(p.streaks) > 0 {
			fmt.Fprintf(buf, `    <clipPath id="clip-%d"><path d="%s"/></clipPath>`+"\n", i, pathData(p.poly))
		}
	}
	buf.WriteString("  </defs>\n")
}

func renderDeckle(buf *bytes.Buffer, s scene) {
	buf.WriteString(`  <g id="deckle" fill="none" stroke-width="1">` + "\n")
	for i := range deckleSteps {
		inset := float64(i) + 0.5
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" stroke="%s" stroke-opacity="%.3f"/>`+"\n",
			inset, inset, s.width-2*inset, s.height-2*inset, s.line.Hex(), deckleAlpha(i))
	}
	buf.WriteString("  </g>\n")
}

func renderPanes(buf *bytes.Buffer, panes []pane) {
	buf.WriteString(`  <g id="glass">` + "\n")
	for i, p := range panes {
		fmt.Fprintf(buf, `    <path d="%s" fill="url(#glass-%d)" fill-opacity="%.3f"/>`+"\n", pathData(p.poly), i, p.opacity)
		if len(p.streaks) == 0 {
			continue
		}
		fmt.Fprintf(buf, `    <g clip-path="url(#clip-%d)" stroke="#ffffff" stroke-opacity="%.3f" stroke-width="%.1f">`+"\n",
			i, streakAlpha, streakWidth)
		for _, sg := range p.streaks {
			writeLine(buf, "      ", sg, "")
		}
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </g>\n")
}

func renderLead(buf *bytes.Buffer, strokes []stroke) {
	buf.WriteString(`  <g id="lead" fill="none" stroke-linecap="round" stroke-linejoin="round">` + "\n")
	for _, st := range strokes {
		if st.width <= 0 {
			continue
		}
		writeLine(buf, "    ", st.segment, strokeAttrs(st.color, st.alpha, st.width))
	}
	buf.WriteString("  </g>\n")
}

func writeLine(buf *bytes.Buffer, indent string, sg segment, attrs string) {
	fmt.Fprintf(buf, `%s<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"%s/>`+"\n",
		indent, sg.a.X, sg.a.Y, sg.b.X, sg.b.Y, attrs)
}

func strokeAttrs(c colorful.Color, alpha, width float64) string {
	return fmt.Sprintf(` stroke="%s" stroke-opacity="%.3f" stroke-width="%.2f"`, c.Hex(), alpha, width)
}

func pathData(poly geom.Polygon) string {
	var sb strings.Builder
	for i, p := range poly {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.2f %.2f", p.X, p.Y)
	}
	sb.WriteString(" Z")
	return sb.String()
}
