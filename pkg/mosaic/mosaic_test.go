package mosaic

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/palette"
)

func sample() Mosaic {
	square := geom.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	return Mosaic{
		Version: FormatVersion,
		Seed:    42,
		Width:   10,
		Height:  10,
		Network: NetworkVoronoi,
		Palette: palette.Palette{Name: "test", Inks: []string{"#ff0000"}},
		Points:  []geom.Point{{X: 5, Y: 5}},
		Cells: []Cell{{
			Site:     0,
			Point:    geom.Pt(5, 5),
			Polygon:  square,
			Inset:    square,
			Centroid: geom.Pt(5, 5),
			Area:     100,
			Color:    "#ff0000",
		}},
		Edges: []Edge{{A: geom.Pt(0, 0), B: geom.Pt(10, 0), Owners: []int{0}, Length: 10, Width: 3}},
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	m := sample()
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"network": "voronoi"`) {
		t.Errorf("Marshal() output missing network field:\n%s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Seed != m.Seed || len(got.Cells) != 1 || got.Cells[0].Area != 100 {
		t.Errorf("Unmarshal() = %+v, want %+v", got, m)
	}
}

func TestUnmarshalDefaults(t *testing.T) {
	data := `{"width":10,"height":10,"palette":{"inks":["#fff"]},
		"cells":[{"polygon":[{"x":0,"y":0},{"x":10,"y":0},{"x":0,"y":10}]}]}`
	m, err := Unmarshal([]byte(data))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m.Version != FormatVersion {
		t.Errorf("Version = %d, want %d", m.Version, FormatVersion)
	}
	if m.Network != NetworkVoronoi {
		t.Errorf("Network = %q, want %q", m.Network, NetworkVoronoi)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Mosaic)
	}{
		{"future version", func(m *Mosaic) { m.Version = FormatVersion + 1 }},
		{"zero frame", func(m *Mosaic) { m.Width = 0 }},
		{"no cells", func(m *Mosaic) { m.Cells = nil }},
		{"no inks", func(m *Mosaic) { m.Palette.Inks = nil }},
		{"short polygon", func(m *Mosaic) { m.Cells[0].Polygon = m.Cells[0].Polygon[:2] }},
		{"color out of range", func(m *Mosaic) { m.Cells[0].ColorIndex = 3 }},
		{"bad triangle", func(m *Mosaic) { m.Triangles = [][3]int{{0, 1, 2}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sample()
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}

	m := sample()
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() on sample = %v, want nil", err)
	}
}

func TestUnmarshalInvalidJSON(t *testing.T) {
	if _, err := Unmarshal([]byte("{not json")); err == nil {
		t.Error("Unmarshal() = nil error, want error")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.json")
	if err := WriteFile(sample(), path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if m.Palette.Name != "test" {
		t.Errorf("Palette.Name = %q, want %q", m.Palette.Name, "test")
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile() on missing file = nil error, want error")
	}
}

func TestRecolor(t *testing.T) {
	m := sample()
	m.Cells[0].ColorIndex = 2

	sage, err := palette.Lookup("copper-sage")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Recolor(sage); err != nil {
		t.Fatalf("Recolor: %v", err)
	}
	if m.Palette.Name != "copper-sage" {
		t.Errorf("Palette.Name = %q, want copper-sage", m.Palette.Name)
	}
	if got, want := m.Cells[0].Color, sage.Inks[2]; got != want {
		t.Errorf("Cells[0].Color = %q, want %q", got, want)
	}

	short := sage.Clone()
	short.Inks = short.Inks[:2]
	if err := m.Recolor(short); err == nil {
		t.Error("Recolor with too few inks should fail")
	}
	if m.Palette.Name != "copper-sage" || len(m.Palette.Inks) != 5 {
		t.Error("failed Recolor must leave the palette unchanged")
	}
}
