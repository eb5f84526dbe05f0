package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxFrameSide bounds each frame dimension accepted from users.
const MaxFrameSide = 20000

// ValidateFrame validates frame dimensions supplied by a host.
//
// Validation rules:
//   - Both dimensions finite and strictly positive
//   - Neither dimension above MaxFrameSide
func ValidateFrame(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return New(ErrCodeFrameInvalid, "frame must have positive finite dimensions, got %gx%g", width, height)
		}
	}
	if width > MaxFrameSide || height > MaxFrameSide {
		return New(ErrCodeFrameInvalid, "frame too large (max %d per side), got %gx%g", MaxFrameSide, width, height)
	}
	return nil
}

// Raster limits for PNG output, in pixels.
const (
	MaxRasterSide   = 16384
	MaxRasterPixels = 64 << 20
)

// ValidateRasterSize checks the pixel size of a raster before it is
// allocated. Both sides must be finite and positive, neither above
// MaxRasterSide, and the area at most MaxRasterPixels.
func ValidateRasterSize(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return New(ErrCodeInvalidInput, "raster size must be positive and finite, got %gx%g", width, height)
		}
	}
	if width > MaxRasterSide || height > MaxRasterSide || width*height > MaxRasterPixels {
		return New(ErrCodeInvalidInput, "raster too large (max %d px per side, %d px total), got %.0fx%.0f",
			MaxRasterSide, MaxRasterPixels, width, height)
	}
	return nil
}

// ValidateCellCount checks a target cell count against [1, limit].
// A limit of zero or less disables the upper bound.
func ValidateCellCount(n, limit int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "cell count must be at least 1, got %d", n)
	}
	if limit > 0 && n > limit {
		return New(ErrCodeInvalidInput, "cell count too large (max %d), got %d", limit, n)
	}
	return nil
}

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateHexColor validates a CSS-style hex color.
func ValidateHexColor(s string) error {
	if !hexColorRegex.MatchString(s) {
		return New(ErrCodeInvalidColor, "invalid hex color %q (want #rgb or #rrggbb)", s)
	}
	return nil
}

// paletteNameRegex matches lowercase kebab-case palette names.
var paletteNameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidatePaletteName validates a palette name as used in URLs and file names.
func ValidatePaletteName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPalette, "palette name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidPalette, "palette name too long (max 64 characters)")
	}
	if !paletteNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPalette, "invalid palette name %q (want lowercase kebab-case)", name)
	}
	return nil
}

// ValidateOutputPath validates a file path the CLI is about to write.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) in relative paths
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if !strings.HasPrefix(path, "/") {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return New(ErrCodeInvalidPath, "relative path cannot contain path traversal sequences (..)")
			}
		}
	}

	return nil
}

// ValidateRedisURL validates a cache connection URL.
// It ensures the URL uses the redis or rediss scheme.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "redis URL must use redis:// or rediss:// scheme")
	}

	return nil
}
