package geom

import (
	"math"

	"github.com/matzehuels/stainedglass/pkg/errors"
)

// Inset shrinks poly toward its area centroid: v' = c + (v-c)*s.
//
// s must lie in (0, 1]. At s == 1 the result is an exact copy of poly.
// For convex input the result stays simple and strictly inside poly for
// every s < 1. Non-convex rings (possible along the frame after clipping)
// can self-intersect under this transform; that is not corrected here.
func Inset(poly Polygon, s float64) (Polygon, error) {
	if math.IsNaN(s) || s <= 0 || s > 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "inset scale must be in (0, 1], got %v", s)
	}
	if s == 1 {
		return poly.Clone(), nil
	}
	c := poly.Centroid()
	out := make(Polygon, len(poly))
	for i, v := range poly {
		out[i] = Point{
			X: c.X + float64((v.X-c.X)*s),
			Y: c.Y + float64((v.Y-c.Y)*s),
		}
	}
	return out, nil
}
