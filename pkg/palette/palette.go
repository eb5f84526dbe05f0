// Package palette defines the color sets a mosaic is painted with.
//
// A palette is a background, an ordered list of glass inks, a lead color,
// and a highlight color. Cells refer to inks only by index, so any palette
// can be applied to any generated mosaic without changing its geometry.
//
// Two palettes are built in; more can be loaded from TOML files:
//
//	[[palette]]
//	name = "night"
//	background = "#101418"
//	inks = ["#3b5b92", "#6d8fc7", "#c9a227"]
//	line = "#050607"
//	highlight = "#ffe8a3"
package palette

import (
	"slices"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stainedglass/pkg/errors"
)

// Palette is a named set of colors, all as #rrggbb hex strings.
type Palette struct {
	Name       string   `toml:"name" json:"name"`
	Background string   `toml:"background" json:"background"`
	Inks       []string `toml:"inks" json:"inks"`
	Line       string   `toml:"line" json:"line"`
	Highlight  string   `toml:"highlight" json:"highlight"`
}

// Default is the palette used when none is named and no seed is known.
const Default = "strawberry-mint"

var builtins = []Palette{
	{
		Name:       "strawberry-mint",
		Background: "#efece6",
		Inks:       []string{"#e25b73", "#ffb8c4", "#6ba28f", "#95c1ad", "#e8dccd"},
		Line:       "#3d4a4a",
		Highlight:  "#ffd98c",
	},
	{
		Name:       "copper-sage",
		Background: "#efe9df",
		Inks:       []string{"#d46a5f", "#f3b59f", "#779a84", "#a4b8a8", "#e7dbc9"},
		Line:       "#2f3838",
		Highlight:  "#ffd27a",
	},
}

// Builtins returns copies of the built-in palettes in their fixed order.
func Builtins() []Palette {
	out := make([]Palette, len(builtins))
	for i, p := range builtins {
		out[i] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of p.
func (p Palette) Clone() Palette {
	p.Inks = slices.Clone(p.Inks)
	return p
}

// Validate checks the name and every color of p.
func (p Palette) Validate() error {
	if err := errors.ValidatePaletteName(p.Name); err != nil {
		return err
	}
	if len(p.Inks) == 0 {
		return errors.New(errors.ErrCodeInvalidPalette, "palette %q has no inks", p.Name)
	}
	colors := append([]string{p.Background, p.Line, p.Highlight}, p.Inks...)
	for _, c := range colors {
		if err := errors.ValidateHexColor(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPalette, err, "palette %q", p.Name)
		}
	}
	return nil
}

// Set is an ordered collection of palettes addressable by name.
// The zero value is empty; use NewSet for one seeded with the built-ins.
type Set struct {
	list []Palette
}

// NewSet returns a set holding the built-in palettes.
func NewSet() *Set {
	return &Set{list: Builtins()}
}

// Add validates p and adds it, replacing any palette of the same name in place.
func (s *Set) Add(p Palette) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for i := range s.list {
		if s.list[i].Name == p.Name {
			s.list[i] = p.Clone()
			return nil
		}
	}
	s.list = append(s.list, p.Clone())
	return nil
}

// Len returns the number of palettes.
func (s *Set) Len() int { return len(s.list) }

// All returns copies of every palette in order.
func (s *Set) All() []Palette {
	out := make([]Palette, len(s.list))
	for i, p := range s.list {
		out[i] = p.Clone()
	}
	return out
}

// Names returns the palette names sorted alphabetically.
func (s *Set) Names() []string {
	names := make([]string, len(s.list))
	for i, p := range s.list {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named palette.
func (s *Set) Lookup(name string) (Palette, error) {
	for _, p := range s.list {
		if p.Name == name {
			return p.Clone(), nil
		}
	}
	return Palette{}, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q (available: %v)", name, s.Names())
}

// Pick returns the palette at seed mod Len, the choice made when a
// request names no palette.
func (s *Set) Pick(seed uint32) Palette {
	return s.list[int(seed%uint32(len(s.list)))].Clone()
}

// Resolve returns the named palette, or Pick(seed) when name is empty.
func (s *Set) Resolve(name string, seed uint32) (Palette, error) {
	if name == "" {
		return s.Pick(seed), nil
	}
	return s.Lookup(name)
}

// Lookup finds a built-in palette by name.
func Lookup(name string) (Palette, error) {
	return NewSet().Lookup(name)
}

// Pick selects a built-in palette from a seed.
func Pick(seed uint32) Palette {
	return NewSet().Pick(seed)
}

// Shade holds the three gradient stops of one glass cell.
type Shade struct {
	Mid  colorful.Color // gradient centre
	Base colorful.Color // ink, brightened for bright cells
	Edge colorful.Color // gradient rim
}

// ShadeOf returns the gradient stops for ink i of p. Bright cells lift the
// ink by 25 levels per channel; the centre adds a further 30 and the rim
// keeps 70% of the base.
func (p Palette) ShadeOf(i int, bright bool) (Shade, error) {
	if i < 0 || i >= len(p.Inks) {
		return Shade{}, errors.New(errors.ErrCodeInvalidInput, "ink index %d out of range for palette %q", i, p.Name)
	}
	c, err := Parse(p.Inks[i])
	if err != nil {
		return Shade{}, err
	}
	r, g, b := c.RGB255()
	base := [3]int{int(r), int(g), int(b)}
	if bright {
		base = offset(base, 25)
	}
	mid := offset(base, 30)
	edge := [3]int{int(float64(base[0]) * 0.7), int(float64(base[1]) * 0.7), int(float64(base[2]) * 0.7)}
	return Shade{Mid: rgb(mid), Base: rgb(base), Edge: rgb(edge)}, nil
}

// Parse converts a hex color string.
func Parse(hex string) (colorful.Color, error) {
	if err := errors.ValidateHexColor(hex); err != nil {
		return colorful.Color{}, err
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "parse %q", hex)
	}
	return c, nil
}

// MustParse is Parse for colors already validated, such as those of a
// palette that passed Validate. It returns black on error.
func MustParse(hex string) colorful.Color {
	c, _ := Parse(hex)
	return c
}

func offset(c [3]int, d int) [3]int {
	for k := range c {
		c[k] = min(255, max(0, c[k]+d))
	}
	return c
}

func rgb(c [3]int) colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}
