package palette

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stainedglass/pkg/errors"
)

type file struct {
	Palettes []Palette `toml:"palette"`
}

// Decode parses palettes from TOML data and validates each one.
func Decode(data []byte) ([]Palette, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPalette, err, "parse palette file")
	}
	if len(f.Palettes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPalette, "palette file defines no [[palette]] tables")
	}
	for _, p := range f.Palettes {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Palettes, nil
}

// Load reads palettes from a TOML file.
func Load(path string) ([]Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "palette file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read palette file %s", path)
	}
	return Decode(data)
}

// LoadInto reads palettes from each path and adds them to s in order.
func (s *Set) LoadInto(paths ...string) error {
	for _, path := range paths {
		ps, err := Load(path)
		if err != nil {
			return err
		}
		for _, p := range ps {
			if err := s.Add(p); err != nil {
				return err
			}
		}
	}
	return nil
}
