package glass

import (
	"math"

	"github.com/matzehuels/stainedglass/pkg/core/attrs"
	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/core/points"
	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
)

// Network selects which segments form the lead network.
type Network string

const (
	// NetworkVoronoi leads the cell boundaries.
	NetworkVoronoi Network = mosaic.NetworkVoronoi
	// NetworkDelaunay leads the triangle sides between neighboring sites.
	NetworkDelaunay Network = mosaic.NetworkDelaunay
)

// ParseNetwork validates a network name. The empty string selects NetworkVoronoi.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case "", NetworkVoronoi:
		return NetworkVoronoi, nil
	case NetworkDelaunay:
		return NetworkDelaunay, nil
	}
	return "", errors.New(errors.ErrCodeInvalidNetwork, "unknown network %q (want voronoi or delaunay)", s)
}

// DefaultInset keeps cells at full size.
const DefaultInset = 1.0

// Params is the complete input of one generation. Identical Params always
// produce identical output.
type Params struct {
	Seed   uint32  `json:"seed"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Cells  int     `json:"cells"`

	// Palette holds the ink colors cells are assigned from. Only its length
	// affects the draws.
	Palette []string `json:"palette"`

	// Jitter ≤0 selects points.DefaultJitter. Inset 0 selects DefaultInset.
	// Extra adds sites as a fraction of the grid.
	Jitter  float64        `json:"jitter,omitempty"`
	Extra   float64        `json:"extra,omitempty"`
	Inset   float64        `json:"inset,omitempty"`
	Network Network        `json:"network,omitempty"`
	Seam    attrs.SeamMode `json:"seam,omitempty"`

	MinWidth float64 `json:"min_width,omitempty"`
	MaxWidth float64 `json:"max_width,omitempty"`

	DisableEdgeJitter bool `json:"disable_edge_jitter,omitempty"`
}

// Frame returns the generation frame [0,Width]×[0,Height].
func (p Params) Frame() geom.Rect { return geom.Frame(p.Width, p.Height) }

// normalize validates p and fills defaults.
func (p Params) normalize() (Params, error) {
	if !p.Frame().Valid() {
		return p, errors.New(errors.ErrCodeFrameInvalid,
			"frame must have positive finite dimensions, got %gx%g", p.Width, p.Height)
	}
	if p.Cells < 1 {
		return p, errors.New(errors.ErrCodeInvalidInput, "target cell count must be at least 1, got %d", p.Cells)
	}
	if len(p.Palette) == 0 {
		return p, errors.New(errors.ErrCodeInvalidPalette, "palette must hold at least one color")
	}
	if p.Jitter > points.MaxJitter {
		return p, errors.New(errors.ErrCodeInvalidInput, "jitter must be at most %v, got %v", points.MaxJitter, p.Jitter)
	}
	if p.Inset == 0 {
		p.Inset = DefaultInset
	}
	if math.IsNaN(p.Inset) || p.Inset < 0 || p.Inset > 1 {
		return p, errors.New(errors.ErrCodeInvalidInput, "inset scale must be in (0, 1], got %v", p.Inset)
	}
	network, err := ParseNetwork(string(p.Network))
	if err != nil {
		return p, err
	}
	p.Network = network
	seam, err := attrs.ParseSeamMode(string(p.Seam))
	if err != nil {
		return p, err
	}
	p.Seam = seam
	return p, nil
}
