package palette

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stainedglass/pkg/errors"
)

func TestBuiltinsValid(t *testing.T) {
	ps := Builtins()
	require.Len(t, ps, 2)
	for _, p := range ps {
		assert.NoErrorf(t, p.Validate(), "builtin %s", p.Name)
		assert.Len(t, p.Inks, 5)
	}

	// Builtins hands out copies.
	ps[0].Inks[0] = "#000000"
	assert.Equal(t, "#e25b73", Builtins()[0].Inks[0])
}

func TestPick(t *testing.T) {
	tests := []struct {
		seed uint32
		want string
	}{
		{0, "strawberry-mint"},
		{1, "copper-sage"},
		{42, "strawberry-mint"},
		{7, "copper-sage"},
	}
	for _, tt := range tests {
		if got := Pick(tt.seed).Name; got != tt.want {
			t.Errorf("Pick(%d) = %v, want %v", tt.seed, got, tt.want)
		}
	}
}

func TestSetResolve(t *testing.T) {
	s := NewSet()
	p, err := s.Resolve("", 3)
	require.NoError(t, err)
	assert.Equal(t, "copper-sage", p.Name)

	p, err = s.Resolve("strawberry-mint", 3)
	require.NoError(t, err)
	assert.Equal(t, "strawberry-mint", p.Name)

	_, err = s.Resolve("neon", 3)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPalette))
}

func TestSetAdd(t *testing.T) {
	s := NewSet()
	night := Palette{Name: "night", Background: "#101418", Inks: []string{"#3b5b92"}, Line: "#050607", Highlight: "#ffe8a3"}
	require.NoError(t, s.Add(night))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"copper-sage", "night", "strawberry-mint"}, s.Names())

	night.Inks = []string{"#111111", "#222222"}
	require.NoError(t, s.Add(night))
	assert.Equal(t, 3, s.Len())
	got, err := s.Lookup("night")
	require.NoError(t, err)
	assert.Len(t, got.Inks, 2)

	bad := night
	bad.Line = "black"
	assert.True(t, errors.Is(s.Add(bad), errors.ErrCodeInvalidPalette))
}

func TestValidate(t *testing.T) {
	base := Builtins()[0]
	tests := []struct {
		name   string
		mutate func(p *Palette)
	}{
		{"empty name", func(p *Palette) { p.Name = "" }},
		{"no inks", func(p *Palette) { p.Inks = nil }},
		{"bad ink", func(p *Palette) { p.Inks = []string{"#12345"} }},
		{"bad background", func(p *Palette) { p.Background = "white" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base.Clone()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

func TestShadeOf(t *testing.T) {
	p := Builtins()[0]

	s, err := p.ShadeOf(0, false)
	require.NoError(t, err)
	assert.Equal(t, "#e25b73", s.Base.Hex())
	assert.Equal(t, "#ff7991", s.Mid.Hex())
	assert.Equal(t, "#9e3f50", s.Edge.Hex())

	s, err = p.ShadeOf(0, true)
	require.NoError(t, err)
	assert.Equal(t, "#fb748c", s.Base.Hex())
	assert.Equal(t, "#ff92aa", s.Mid.Hex())

	_, err = p.ShadeOf(5, false)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	c, err := Parse("#fff")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", c.Hex())

	_, err = Parse("rgb(1,2,3)")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidColor))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "palettes.toml")
	data := `
[[palette]]
name = "night"
background = "#101418"
inks = ["#3b5b92", "#6d8fc7", "#c9a227"]
line = "#050607"
highlight = "#ffe8a3"

[[palette]]
name = "dawn"
background = "#fff4e6"
inks = ["#f28c8c"]
line = "#333333"
highlight = "#ffffff"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	ps, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "night", ps[0].Name)
	assert.Equal(t, []string{"#3b5b92", "#6d8fc7", "#c9a227"}, ps[0].Inks)

	s := NewSet()
	require.NoError(t, s.LoadInto(path))
	assert.Equal(t, 4, s.Len())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[[palette]\nname ="},
		{"empty", "# nothing here\n"},
		{"invalid color", "[[palette]]\nname = \"x\"\nbackground = \"#fff\"\ninks = [\"nope\"]\nline = \"#000\"\nhighlight = \"#fff\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidPalette) {
				t.Errorf("Decode() error = %v, want code %s", err, errors.ErrCodeInvalidPalette)
			}
		})
	}
}
