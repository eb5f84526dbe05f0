// Package mosaic defines the serialized form of a generated mosaic.
//
// A Mosaic is what every sink renders and what the json format writes. It
// carries the full geometry (cells, inset polygons, lead edges, dual
// triangles) together with the drawn attributes and the palette, so a
// saved mosaic can be re-rendered in any format without regenerating it.
//
// The internal representation used during generation lives in
// pkg/core/glass; use glass.Result.Export to convert.
package mosaic

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/stainedglass/pkg/core/attrs"
	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/palette"
)

// FormatVersion is written into every serialized mosaic.
const FormatVersion = 1

// Network variants.
const (
	NetworkVoronoi  = "voronoi"
	NetworkDelaunay = "delaunay"
)

// =============================================================================
// Mosaic - Serialized Format
// =============================================================================

// Mosaic is a complete generated mosaic.
//
// Edges holds the lead network: cell boundaries for the voronoi network,
// triangle sides over the sites for the delaunay network. Triangles is
// always the Delaunay dual, indexed into Points.
type Mosaic struct {
	Version int    `json:"version"`
	Seed    uint32 `json:"seed"`

	// NextSeed is the follow-up seed drawn after generation; reseeding
	// with it continues the sequence.
	NextSeed uint32 `json:"next_seed"`

	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Network string  `json:"network"`
	Seam    string  `json:"seam"`
	Inset   float64 `json:"inset"`

	Palette palette.Palette `json:"palette"`

	Cols   int          `json:"cols"`
	Rows   int          `json:"rows"`
	Points []geom.Point `json:"points"`

	Cells     []Cell   `json:"cells"`
	Edges     []Edge   `json:"edges"`
	Triangles [][3]int `json:"triangles,omitempty"`

	// Degenerate is set when the sites could not be triangulated and the
	// frame was kept as a single cell.
	Degenerate string `json:"degenerate,omitempty"`
}

// Frame returns the mosaic frame.
func (m *Mosaic) Frame() geom.Rect { return geom.Frame(m.Width, m.Height) }

// IsDelaunay reports whether the lead network follows the triangulation.
func (m *Mosaic) IsDelaunay() bool { return m.Network == NetworkDelaunay }

// =============================================================================
// Cell and Edge Records
// =============================================================================

// Cell is one piece of glass.
type Cell struct {
	Site      int          `json:"site"`
	Point     geom.Point   `json:"point"`
	Polygon   geom.Polygon `json:"polygon"`
	Inset     geom.Polygon `json:"inset"`
	Centroid  geom.Point   `json:"centroid"`
	Area      float64      `json:"area"`
	Neighbors []int        `json:"neighbors,omitempty"`

	ColorIndex int            `json:"color_index"`
	Color      string         `json:"color"`
	Bright     bool           `json:"bright,omitempty"`
	Material   attrs.Material `json:"material"`
	Texture    attrs.Texture  `json:"texture"`
}

// Edge is one lead segment.
type Edge struct {
	A         geom.Point `json:"a"`
	B         geom.Point `json:"b"`
	Owners    []int      `json:"owners"`
	Length    float64    `json:"length"`
	Degree    int        `json:"degree"`
	Jitter    float64    `json:"jitter"`
	Width     float64    `json:"width"`
	Highlight float64    `json:"highlight"`
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Mosaic to pretty-printed JSON bytes.
func Marshal(m Mosaic) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Mosaic and validates it.
func Unmarshal(data []byte) (Mosaic, error) {
	var m Mosaic
	if err := json.Unmarshal(data, &m); err != nil {
		return Mosaic{}, fmt.Errorf("unmarshal mosaic: %w", err)
	}
	if m.Version == 0 {
		m.Version = FormatVersion
	}
	if m.Network == "" {
		m.Network = NetworkVoronoi
	}
	if err := m.Validate(); err != nil {
		return Mosaic{}, err
	}
	return m, nil
}

// Validate checks the structural invariants renderers rely on.
func (m *Mosaic) Validate() error {
	if m.Version > FormatVersion {
		return fmt.Errorf("mosaic format version %d is newer than supported version %d", m.Version, FormatVersion)
	}
	if !m.Frame().Valid() {
		return fmt.Errorf("mosaic frame must be positive, got %gx%g", m.Width, m.Height)
	}
	if len(m.Cells) == 0 {
		return fmt.Errorf("mosaic must contain cells")
	}
	if len(m.Palette.Inks) == 0 {
		return fmt.Errorf("mosaic palette must contain inks")
	}
	for i, c := range m.Cells {
		if len(c.Polygon) < 3 {
			return fmt.Errorf("cell %d has %d vertices, need at least 3", i, len(c.Polygon))
		}
		if c.ColorIndex < 0 || c.ColorIndex >= len(m.Palette.Inks) {
			return fmt.Errorf("cell %d color index %d out of range", i, c.ColorIndex)
		}
	}
	n := len(m.Points)
	for i, t := range m.Triangles {
		for _, v := range t {
			if v < 0 || v >= n {
				return fmt.Errorf("triangle %d references point %d of %d", i, v, n)
			}
		}
	}
	return nil
}

// Recolor applies p to the mosaic, keeping every cell's ink index. The
// palette needs at least as many inks as the highest index in use.
func (m *Mosaic) Recolor(p palette.Palette) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, c := range m.Cells {
		if c.ColorIndex >= len(p.Inks) {
			return errors.New(errors.ErrCodeInvalidPalette,
				"palette %q has %d inks, cell %d uses ink %d", p.Name, len(p.Inks), c.Site, c.ColorIndex)
		}
	}
	m.Palette = p.Clone()
	for i := range m.Cells {
		m.Cells[i].Color = p.Inks[m.Cells[i].ColorIndex]
	}
	return nil
}

// WriteFile writes a Mosaic to a JSON file.
func WriteFile(m Mosaic, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Mosaic from a JSON file.
func ReadFile(path string) (Mosaic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mosaic{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
