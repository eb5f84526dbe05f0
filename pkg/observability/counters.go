package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Tee forwards every event to each listener in order.
type Tee []Hooks

func (t Tee) OnGenerateStart(ctx context.Context, seed uint32, cells int) {
	for _, h := range t {
		h.OnGenerateStart(ctx, seed, cells)
	}
}

func (t Tee) OnGenerateComplete(ctx context.Context, seed uint32, n int, d time.Duration, err error) {
	for _, h := range t {
		h.OnGenerateComplete(ctx, seed, n, d, err)
	}
}

func (t Tee) OnRenderStart(ctx context.Context, formats []string) {
	for _, h := range t {
		h.OnRenderStart(ctx, formats)
	}
}

func (t Tee) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	for _, h := range t {
		h.OnRenderComplete(ctx, formats, d, err)
	}
}

func (t Tee) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheHit(ctx, keyType)
	}
}

func (t Tee) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (t Tee) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range t {
		h.OnCacheSet(ctx, keyType, size)
	}
}

func (t Tee) OnRequest(ctx context.Context, method, path string) {
	for _, h := range t {
		h.OnRequest(ctx, method, path)
	}
}

func (t Tee) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	for _, h := range t {
		h.OnResponse(ctx, method, path, status, d)
	}
}

func (t Tee) OnError(ctx context.Context, method, path string, err error) {
	for _, h := range t {
		h.OnError(ctx, method, path, err)
	}
}

// Counters tallies events in memory. It is safe for concurrent use.
type Counters struct {
	started time.Time

	generated, generateFailed atomic.Int64
	generateNanos             atomic.Int64
	rendered, renderFailed    atomic.Int64

	hits, misses, sets, setBytes atomic.Int64

	requests, requestErrors atomic.Int64
	byClass                 [6]atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{started: time.Now()}
}

// Snapshot is a point-in-time copy of Counters, ready for JSON.
type Snapshot struct {
	Uptime string `json:"uptime"`

	Generated      int64  `json:"generated"`
	GenerateFailed int64  `json:"generate_failed"`
	MeanGenerate   string `json:"mean_generate"`
	Rendered       int64  `json:"rendered"`
	RenderFailed   int64  `json:"render_failed"`

	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	CacheSets     int64 `json:"cache_sets"`
	CacheSetBytes int64 `json:"cache_set_bytes"`

	Requests      int64            `json:"requests"`
	RequestErrors int64            `json:"request_errors"`
	Responses     map[string]int64 `json:"responses"`
}

func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Uptime:         time.Since(c.started).Round(time.Second).String(),
		Generated:      c.generated.Load(),
		GenerateFailed: c.generateFailed.Load(),
		Rendered:       c.rendered.Load(),
		RenderFailed:   c.renderFailed.Load(),
		CacheHits:      c.hits.Load(),
		CacheMisses:    c.misses.Load(),
		CacheSets:      c.sets.Load(),
		CacheSetBytes:  c.setBytes.Load(),
		Requests:       c.requests.Load(),
		RequestErrors:  c.requestErrors.Load(),
		Responses:      map[string]int64{},
	}
	var mean time.Duration
	if s.Generated > 0 {
		mean = time.Duration(c.generateNanos.Load() / s.Generated)
	}
	s.MeanGenerate = mean.String()
	for i := 1; i < len(c.byClass); i++ {
		if n := c.byClass[i].Load(); n > 0 {
			s.Responses[string(rune('0'+i))+"xx"] = n
		}
	}
	return s
}

func (c *Counters) OnGenerateStart(context.Context, uint32, int) {}

func (c *Counters) OnGenerateComplete(_ context.Context, _ uint32, _ int, d time.Duration, err error) {
	if err != nil {
		c.generateFailed.Add(1)
		return
	}
	c.generated.Add(1)
	c.generateNanos.Add(int64(d))
}

func (c *Counters) OnRenderStart(context.Context, []string) {}

func (c *Counters) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, err error) {
	if err != nil {
		c.renderFailed.Add(1)
		return
	}
	c.rendered.Add(int64(len(formats)))
}

func (c *Counters) OnCacheHit(context.Context, string)  { c.hits.Add(1) }
func (c *Counters) OnCacheMiss(context.Context, string) { c.misses.Add(1) }

func (c *Counters) OnCacheSet(_ context.Context, _ string, size int) {
	c.sets.Add(1)
	c.setBytes.Add(int64(size))
}

func (c *Counters) OnRequest(context.Context, string, string) { c.requests.Add(1) }

func (c *Counters) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	if class := status / 100; class >= 1 && class < len(c.byClass) {
		c.byClass[class].Add(1)
	}
}

func (c *Counters) OnError(context.Context, string, string, error) { c.requestErrors.Add(1) }

var (
	_ Hooks = Tee(nil)
	_ Hooks = (*Counters)(nil)
	_ Hooks = Noop{}
)
