package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateFrame(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"square", 1000, 1000, false},
		{"portrait", 1200, 1600, false},
		{"tiny", 0.5, 0.5, false},
		{"at limit", MaxFrameSide, MaxFrameSide, false},

		{"zero width", 0, 100, true},
		{"negative height", 100, -1, true},
		{"nan", math.NaN(), 100, true},
		{"inf", 100, math.Inf(1), true},
		{"too wide", MaxFrameSide + 1, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFrame(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFrame(%g, %g) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeFrameInvalid) {
				t.Errorf("ValidateFrame(%g, %g) code = %v, want %v", tt.w, tt.h, GetCode(err), ErrCodeFrameInvalid)
			}
		})
	}
}

func TestValidateRasterSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"default frame", 1120, 1120, false},
		{"wide strip", MaxRasterSide, 1000, false},

		{"zero", 0, 100, true},
		{"nan", math.NaN(), 100, true},
		{"inf", 100, math.Inf(1), true},
		{"side too long", MaxRasterSide + 1, 10, true},
		{"too many pixels", 10000, 10000, true},
		{"scaled frame", 2e6, 2e6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRasterSize(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRasterSize(%g, %g) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateRasterSize(%g, %g) code = %v, want %v", tt.w, tt.h, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateCellCount(t *testing.T) {
	tests := []struct {
		name     string
		n, limit int
		wantErr  bool
	}{
		{"one", 1, 100, false},
		{"at limit", 100, 100, false},
		{"no limit", 100000, 0, false},

		{"zero", 0, 100, true},
		{"negative", -3, 0, true},
		{"over limit", 101, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCellCount(tt.n, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCellCount(%d, %d) error = %v, wantErr %v", tt.n, tt.limit, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#e25b73", false},
		{"#FFB8C4", false},
		{"#fff", false},

		{"", true},
		{"e25b73", true},
		{"#e25b7", true},
		{"#gggggg", true},
		{"#e25b73ff", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePaletteName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"builtin", "strawberry-mint", false},
		{"single word", "sage", false},
		{"digits", "night-2", false},

		{"empty", "", true},
		{"uppercase", "Copper-Sage", true},
		{"space", "copper sage", true},
		{"leading dash", "-copper", true},
		{"double dash", "copper--sage", true},
		{"path", "../copper", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePaletteName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaletteName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "mosaic.svg", false},
		{"nested", "out/mosaic.png", false},
		{"absolute", "/tmp/mosaic.pdf", false},
		{"dotted name", "stained-glass-42.v2.json", false},

		{"empty", "", true},
		{"traversal", "../mosaic.svg", true},
		{"nested traversal", "out/../../mosaic.svg", true},
		{"null byte", "mosaic\x00.svg", true},
		{"newline", "mosaic\n.svg", true},
		{"too long", strings.Repeat("a", 1025), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRedisURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"redis", "redis://localhost:6379/0", false},
		{"tls", "rediss://cache.internal:6380", false},

		{"empty", "", true},
		{"http", "http://localhost:6379", true},
		{"bare host", "localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRedisURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRedisURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
