// Package geom holds the planar primitives shared by the mosaic core:
// points, axis-aligned frames, polygons, and the fixed-precision
// quantization used to decide when two vertices are the same vertex.
package geom

import (
	"math"
)

// Quantum is the quantization step for vertex identity. Two points closer
// than Quantum on both axes may share a key and are then treated as one vertex.
const Quantum = 1e-3

// quantScale is 1/Quantum as an exact constant.
const quantScale = 1 / Quantum

// Point is a location in frame coordinates (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Cross returns the z component of (a-p)×(b-p).
func Cross(p, a, b Point) float64 {
	return (a.X-p.X)*(b.Y-p.Y) - (a.Y-p.Y)*(b.X-p.X)
}

// Key is the quantized identity of a point.
type Key struct {
	X, Y int64
}

// Quantize returns p's key on the Quantum grid (round half up).
func Quantize(p Point) Key {
	return Key{
		X: int64(math.Floor(float64(p.X*quantScale) + 0.5)),
		Y: int64(math.Floor(float64(p.Y*quantScale) + 0.5)),
	}
}

// Less orders keys lexicographically on (X, Y).
func (k Key) Less(o Key) bool {
	if k.X != o.X {
		return k.X < o.X
	}
	return k.Y < o.Y
}

// Rect is an axis-aligned frame [X0,X1]×[Y0,Y1].
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Frame returns the frame [0,w]×[0,h].
func Frame(w, h float64) Rect { return Rect{X1: w, Y1: h} }

// Width returns X1-X0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns Y1-Y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Area returns the frame area.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Valid reports whether both dimensions are finite and strictly positive.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width() > 0 && r.Height() > 0
}

// Contains reports whether p lies in the closed rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Polygon returns the frame corners as a closed polygon.
func (r Rect) Polygon() Polygon {
	return Polygon{{r.X0, r.Y0}, {r.X1, r.Y0}, {r.X1, r.Y1}, {r.X0, r.Y1}}
}
