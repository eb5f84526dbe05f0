package sink

import (
	"bytes"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions applies the margin, deckle, and streak options shared
// with the SVG sink.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 1.0, one pixel per unit).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes the mosaic in pure Go.
func RenderPNG(m mosaic.Mosaic, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1.0}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0) || math.IsInf(r.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive and finite, got %g", r.scale)
	}

	o := defaultOptions()
	for _, opt := range r.svgOpts {
		opt(&o)
	}
	s, err := buildScene(m, o)
	if err != nil {
		return nil, err
	}

	k := r.scale
	pw, ph := math.Ceil(s.width*k), math.Ceil(s.height*k)
	if err := errors.ValidateRasterSize(pw, ph); err != nil {
		return nil, err
	}
	dc := gg.NewContext(int(pw), int(ph))
	dc.SetColor(nrgba(s.background, 1))
	dc.Clear()

	if s.deckle {
		dc.SetLineWidth(k)
		for i := range deckleSteps {
			inset := (float64(i) + 0.5) * k
			dc.DrawRectangle(inset, inset, s.width*k-2*inset, s.height*k-2*inset)
			dc.SetColor(nrgba(s.line, deckleAlpha(i)))
			dc.Stroke()
		}
	}

	for _, p := range s.panes {
		paintPane(dc, p, k)
	}

	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, st := range s.strokes {
		if st.width <= 0 {
			continue
		}
		dc.SetLineWidth(st.width * k)
		dc.SetColor(nrgba(st.color, st.alpha))
		dc.DrawLine(st.a.X*k, st.a.Y*k, st.b.X*k, st.b.Y*k)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func paintPane(dc *gg.Context, p pane, k float64) {
	grad := gg.NewRadialGradient(p.center.X*k, p.center.Y*k, gradientInner*k, p.center.X*k, p.center.Y*k, p.radius*k)
	for _, st := range p.stops {
		grad.AddColorStop(st.offset, nrgba(st.color, st.alpha*p.opacity))
	}
	tracePolygon(dc, p.poly, k)
	dc.SetFillStyle(grad)
	dc.Fill()

	if len(p.streaks) == 0 {
		return
	}
	dc.Push()
	tracePolygon(dc, p.poly, k)
	dc.Clip()
	dc.SetLineWidth(streakWidth * k)
	dc.SetColor(nrgba(white, streakAlpha))
	for _, sg := range p.streaks {
		dc.DrawLine(sg.a.X*k, sg.a.Y*k, sg.b.X*k, sg.b.Y*k)
		dc.Stroke()
	}
	dc.Pop()
}

func tracePolygon(dc *gg.Context, poly geom.Polygon, k float64) {
	dc.NewSubPath()
	for _, v := range poly {
		dc.LineTo(v.X*k, v.Y*k)
	}
	dc.ClosePath()
}

func nrgba(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(255 * math.Max(0, math.Min(1, alpha))))}
}
