package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	sgerrors "github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// Config is the optional config file. Every value is optional; zero values
// keep the pipeline defaults.
//
//	palette_files = ["~/palettes/night.toml"]
//
//	[generate]
//	width = 1200
//	height = 1600
//	cells = 140
//	palette = "copper-sage"
//	formats = ["svg", "png"]
//
//	[serve]
//	addr = ":8080"
//	max_cells = 2000
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	PaletteFiles []string       `toml:"palette_files"`
	Generate     GenerateConfig `toml:"generate"`
	Serve        ServeConfig    `toml:"serve"`
	Cache        CacheConfig    `toml:"cache"`

	path string
}

// GenerateConfig holds default generation and render settings.
type GenerateConfig struct {
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Cells   int      `toml:"cells"`
	Palette string   `toml:"palette"`
	Formats []string `toml:"formats"`
	Inset   float64  `toml:"inset"`
	Jitter  float64  `toml:"jitter"`
	Extra   float64  `toml:"extra"`
	Network string   `toml:"network"`
	Seam    string   `toml:"seam"`
	Margin  float64  `toml:"margin"`
	Scale   float64  `toml:"scale"`
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Addr     string `toml:"addr"`
	MaxCells int    `toml:"max_cells"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// LoadConfig reads the config file at path. A missing file yields an empty
// config unless required is set. Unknown keys are rejected.
func LoadConfig(path string, required bool) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return Config{}, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, sgerrors.Wrap(sgerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, sgerrors.Wrap(sgerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, sgerrors.New(sgerrors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	for i, p := range cfg.PaletteFiles {
		cfg.PaletteFiles[i] = expandHome(p)
	}
	cfg.path = path
	return cfg, nil
}

// apply copies the non-zero settings onto opts.
func (g GenerateConfig) apply(opts *pipeline.Options) {
	setIf(&opts.Width, g.Width)
	setIf(&opts.Height, g.Height)
	setIf(&opts.Cells, g.Cells)
	setIf(&opts.Palette, g.Palette)
	setIf(&opts.Inset, g.Inset)
	setIf(&opts.Jitter, g.Jitter)
	setIf(&opts.Extra, g.Extra)
	setIf(&opts.Network, g.Network)
	setIf(&opts.Seam, g.Seam)
	setIf(&opts.Margin, g.Margin)
	setIf(&opts.Scale, g.Scale)
	if len(g.Formats) > 0 {
		opts.Formats = append([]string(nil), g.Formats...)
	}
}

func setIf[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// defaultConfigPath returns config.toml under the XDG config directory
// (~/.config/stainedglass/).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

func displayConfigPath() string {
	p, err := defaultConfigPath()
	if err != nil {
		return "none"
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(p, home) {
		return "~" + strings.TrimPrefix(p, home)
	}
	return p
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
