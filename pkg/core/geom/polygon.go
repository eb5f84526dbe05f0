package geom

import (
	"math"
)

// Polygon is an implicitly closed vertex ring.
type Polygon []Point

// SignedArea returns the shoelace area; its sign depends on winding.
func (p Polygon) SignedArea() float64 {
	var a float64
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a += p[j].X*p[i].Y - p[i].X*p[j].Y
	}
	return a / 2
}

// Area returns the absolute polygon area.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Centroid returns the area centroid. Degenerate (zero-area) polygons
// fall back to the vertex mean, and an empty polygon to the origin.
func (p Polygon) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	a := p.SignedArea() * 6
	if a == 0 {
		var c Point
		for _, v := range p {
			c = c.Add(v)
		}
		return c.Scale(1 / float64(len(p)))
	}
	var x, y float64
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		f := p[j].X*p[i].Y - p[i].X*p[j].Y
		x += (p[j].X + p[i].X) * f
		y += (p[j].Y + p[i].Y) * f
	}
	return Point{x / a, y / a}
}

// Bounds returns the axis-aligned bounding box.
func (p Polygon) Bounds() Rect {
	b := Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, v := range p {
		b.X0 = math.Min(b.X0, v.X)
		b.Y0 = math.Min(b.Y0, v.Y)
		b.X1 = math.Max(b.X1, v.X)
		b.Y1 = math.Max(b.Y1, v.Y)
	}
	return b
}

// Contains reports whether q lies strictly inside the polygon (even-odd rule).
// Points on the boundary may report either way.
func (p Polygon) Contains(q Point) bool {
	in := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if q.X < x {
				in = !in
			}
		}
	}
	return in
}

// Clone returns a copy of p.
func (p Polygon) Clone() Polygon {
	return append(Polygon(nil), p...)
}

// ClipHalfPlane keeps the part of p where a*x + b*y <= c
// (one Sutherland–Hodgman pass). The input ring must be convex for the
// result to be a single ring, which holds for every Voronoi cell.
// Products are rounded before summing so no platform fuses them.
func (p Polygon) ClipHalfPlane(a, b, c float64) Polygon {
	if len(p) == 0 {
		return nil
	}
	out := make(Polygon, 0, len(p)+1)
	for i := range p {
		cur, next := p[i], p[(i+1)%len(p)]
		dc := float64(a*cur.X) + float64(b*cur.Y) - c
		dn := float64(a*next.X) + float64(b*next.Y) - c
		if dc <= 0 {
			out = append(out, cur)
		}
		if (dc < 0 && dn > 0) || (dc > 0 && dn < 0) {
			t := dc / (dc - dn)
			out = append(out, Point{cur.X + float64(t*(next.X-cur.X)), cur.Y + float64(t*(next.Y-cur.Y))})
		}
	}
	return out
}

// Compact drops consecutive vertices that share a quantized key,
// including a closing vertex equal to the first.
func (p Polygon) Compact() Polygon {
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && Quantize(out[len(out)-1]) == Quantize(v) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && Quantize(out[0]) == Quantize(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}
