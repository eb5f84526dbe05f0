package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stainedglass/pkg/cache"
	"github.com/matzehuels/stainedglass/pkg/core/glass"
	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/observability"
)

// Runner turns Options into mosaics and artifacts, consulting its cache
// before each stage. It keeps no per-run state, so one Runner serves any
// number of goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner wires a runner. Nil arguments fall back to a NullCache, the
// DefaultKeyer, and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute generates the mosaic for opts and renders every requested format.
// Each stage is served from cache when possible.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.inheritLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Generate
	genStart := time.Now()
	m, genHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Mosaic = m
	result.Stats.GenerateTime = time.Since(genStart)
	result.Stats.CellCount = len(m.Cells)
	result.Stats.EdgeCount = len(m.Edges)
	result.CacheInfo.MosaicHit = genHit

	data, err := mosaic.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize mosaic")
	}
	result.MosaicHash = cache.Hash(data)

	logger.Info("generated mosaic",
		"seed", m.Seed,
		"palette", m.Palette.Name,
		"cells", len(m.Cells),
		"edges", len(m.Edges),
		"cached", genHit,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.renderHashed(ctx, m, result.MosaicHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo builds the mosaic for opts with caching and returns
// cache hit info. The mosaic always carries the palette resolved from opts,
// even when its geometry came from cache.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (mosaic.Mosaic, bool, error) {
	r.inheritLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return mosaic.Mosaic{}, false, err
	}

	pal, err := opts.ResolvePalette()
	if err != nil {
		return mosaic.Mosaic{}, false, err
	}
	cacheKey := r.Keyer.MosaicKey(opts.MosaicKeyOpts(pal.Inks))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if m, err := mosaic.Unmarshal(data); err == nil {
				m.Palette = pal
				return m, true, nil
			}
			// Undecodable entries fall through and are overwritten.
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
	}

	observability.Pipeline().OnGenerateStart(ctx, opts.Seed, opts.Cells)
	start := time.Now()
	res, err := glass.Generate(opts.GlassParams(pal.Inks))
	cellCount := 0
	if res != nil {
		cellCount = len(res.Cells)
	}
	observability.Pipeline().OnGenerateComplete(ctx, opts.Seed, cellCount, time.Since(start), err)
	if err != nil {
		return mosaic.Mosaic{}, false, err
	}
	if res.Degenerate != nil {
		opts.Logger.Warn("sites could not be triangulated; kept the frame as one cell",
			"seed", opts.Seed, "err", res.Degenerate)
	}

	m := res.Export()
	m.Palette = pal

	if data, err := mosaic.Marshal(m); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLMosaic); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		}
	}

	return m, false, nil
}

// Generate is GenerateWithCacheInfo without the hit flag.
func (r *Runner) Generate(ctx context.Context, opts Options) (mosaic.Mosaic, error) {
	m, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return m, err
}

// RenderWithCacheInfo renders m in opts.Formats. The flag is true only
// when every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m mosaic.Mosaic, opts Options) (map[string][]byte, bool, error) {
	data, err := mosaic.Marshal(m)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize mosaic for cache key")
	}
	return r.renderHashed(ctx, m, cache.Hash(data), opts)
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, m mosaic.Mosaic, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, opts)
	return artifacts, err
}

func (r *Runner) renderHashed(ctx context.Context, m mosaic.Mosaic, mosaicHash string, opts Options) (map[string][]byte, bool, error) {
	r.inheritLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(mosaicHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			missing = append(missing, format)
		}
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing

	observability.Pipeline().OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(ctx, m, renderOpts)
	observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(mosaicHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
		}
	}
	return artifacts, false, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

// inheritLogger gives opts the runner's logger unless the caller chose one.
func (r *Runner) inheritLogger(opts *Options) {
	if opts.Logger != nil {
		return
	}
	opts.Logger = r.Logger
}
