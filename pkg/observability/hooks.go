// Package observability lets hosts watch the pipeline, the cache, and the
// HTTP server without those packages knowing who listens.
//
// Each emitter calls the hooks registered for its area: [Pipeline],
// [Cache], or [HTTP]. Until a host registers something, every call lands on
// a no-op. The CLI registers [LogHooks]; the server adds [Counters] through
// a [Tee] and serves their [Snapshot].
//
//	counters := observability.NewCounters()
//	observability.SetAll(observability.Tee{observability.NewLogHooks(logger), counters})
//
//	observability.Pipeline().OnGenerateStart(ctx, seed, cells)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives generate and render events.
type PipelineHooks interface {
	OnGenerateStart(ctx context.Context, seed uint32, cells int)
	OnGenerateComplete(ctx context.Context, seed uint32, cellCount int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "mosaic" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives server requests, responses, and failures.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, path string, err error)
}

// Hooks is implemented by listeners that want every event.
type Hooks interface {
	PipelineHooks
	CacheHooks
	HTTPHooks
}

// Noop ignores every event.
type Noop struct{}

func (Noop) OnGenerateStart(context.Context, uint32, int)                         {}
func (Noop) OnGenerateComplete(context.Context, uint32, int, time.Duration, error) {}
func (Noop) OnRenderStart(context.Context, []string)                               {}
func (Noop) OnRenderComplete(context.Context, []string, time.Duration, error)      {}
func (Noop) OnCacheHit(context.Context, string)                                    {}
func (Noop) OnCacheMiss(context.Context, string)                                   {}
func (Noop) OnCacheSet(context.Context, string, int)                               {}
func (Noop) OnRequest(context.Context, string, string)                             {}
func (Noop) OnResponse(context.Context, string, string, int, time.Duration)        {}
func (Noop) OnError(context.Context, string, string, error)                        {}

// slot holds one registered listener. Loads never block.
type slot[T any] struct {
	p atomic.Pointer[T]
}

func (s *slot[T]) load() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	var noop any = Noop{}
	return noop.(T)
}

func (s *slot[T]) store(v T) {
	if any(v) == nil {
		return
	}
	s.p.Store(&v)
}

var (
	pipelineSlot slot[PipelineHooks]
	cacheSlot    slot[CacheHooks]
	httpSlot     slot[HTTPHooks]
)

// SetPipelineHooks registers h for pipeline events. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.store(h) }

// SetCacheHooks registers h for cache events. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

// SetHTTPHooks registers h for HTTP events. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.store(h) }

// SetAll registers h for every area.
func SetAll(h Hooks) {
	if h == nil {
		return
	}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func Pipeline() PipelineHooks { return pipelineSlot.load() }

func Cache() CacheHooks { return cacheSlot.load() }

func HTTP() HTTPHooks { return httpSlot.load() }

// Reset drops every registered listener.
func Reset() {
	pipelineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}
