package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recorder struct {
	Noop
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) OnGenerateStart(context.Context, uint32, int) { r.add("generate") }
func (r *recorder) OnCacheHit(context.Context, string)           { r.add("hit") }
func (r *recorder) OnRequest(context.Context, string, string)    { r.add("request") }

func TestRegistryDefaultsToNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	for name, h := range map[string]any{"pipeline": Pipeline(), "cache": Cache(), "http": HTTP()} {
		if _, ok := h.(Noop); !ok {
			t.Errorf("%s hooks = %T, want Noop", name, h)
		}
	}
	Pipeline().OnGenerateComplete(ctx, 1, 1, time.Second, nil)
	Cache().OnCacheSet(ctx, "artifact", 10)
	HTTP().OnError(ctx, "GET", "/", nil)
}

func TestRegistrySetAndReset(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	rec := &recorder{}
	SetAll(rec)
	SetCacheHooks(nil)
	SetAll(nil)

	Pipeline().OnGenerateStart(ctx, 42, 100)
	Cache().OnCacheHit(ctx, "mosaic")
	HTTP().OnRequest(ctx, "GET", "/healthz")

	if got := strings.Join(rec.events, ","); got != "generate,hit,request" {
		t.Errorf("events = %q, want generate,hit,request", got)
	}

	Reset()
	if _, ok := Cache().(Noop); !ok {
		t.Errorf("after Reset Cache() = %T, want Noop", Cache())
	}
}

func TestTee(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	tee := Tee{a, b}
	tee.OnGenerateStart(context.Background(), 1, 1)
	tee.OnCacheHit(context.Background(), "mosaic")

	for i, r := range []*recorder{a, b} {
		if len(r.events) != 2 {
			t.Errorf("listener %d got %v, want 2 events", i, r.events)
		}
	}
}

func TestCounters(t *testing.T) {
	c := NewCounters()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.OnRequest(ctx, "GET", "/mosaic/1.svg")
			c.OnGenerateComplete(ctx, 1, 9, 2*time.Millisecond, nil)
			c.OnResponse(ctx, "GET", "/mosaic/1.svg", 200, time.Millisecond)
		}()
	}
	wg.Wait()

	c.OnGenerateComplete(ctx, 2, 0, time.Millisecond, errors.New("frame"))
	c.OnRenderComplete(ctx, []string{"svg", "png"}, time.Millisecond, nil)
	c.OnRenderComplete(ctx, []string{"pdf"}, time.Millisecond, errors.New("no rsvg"))
	c.OnCacheHit(ctx, "mosaic")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 512)
	c.OnResponse(ctx, "GET", "/mosaic", 400, time.Millisecond)
	c.OnResponse(ctx, "GET", "/nowhere", 999, time.Millisecond)
	c.OnError(ctx, "GET", "/mosaic", errors.New("seed required"))

	s := c.Snapshot()
	checks := []struct {
		name      string
		got, want int64
	}{
		{"requests", s.Requests, 10},
		{"generated", s.Generated, 10},
		{"generate_failed", s.GenerateFailed, 1},
		{"rendered", s.Rendered, 2},
		{"render_failed", s.RenderFailed, 1},
		{"cache_hits", s.CacheHits, 1},
		{"cache_misses", s.CacheMisses, 1},
		{"cache_sets", s.CacheSets, 1},
		{"cache_set_bytes", s.CacheSetBytes, 512},
		{"request_errors", s.RequestErrors, 1},
		{"2xx", s.Responses["2xx"], 10},
		{"4xx", s.Responses["4xx"], 1},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if len(s.Responses) != 2 {
		t.Errorf("Responses = %v, want only 2xx and 4xx", s.Responses)
	}
	if s.MeanGenerate != "2ms" {
		t.Errorf("MeanGenerate = %s, want 2ms", s.MeanGenerate)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnGenerateStart(ctx, 42, 100)
	h.OnGenerateComplete(ctx, 42, 100, time.Millisecond, nil)
	h.OnGenerateComplete(ctx, 7, 0, time.Millisecond, errors.New("frame must be positive"))
	h.OnCacheHit(ctx, "mosaic")
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"generate start", "seed=42", "cells=100",
		"generate failed", "frame must be positive",
		"cache hit", "type=mosaic",
		"status=200",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
