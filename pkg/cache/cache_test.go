package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sgerrors "github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Errorf("NullCache.Get = %v, %v, want miss", data, hit)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if _, hit, err := c.Get(ctx, "mosaic:abc"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "mosaic:abc", []byte(`{"seed":42}`), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "mosaic:abc")
	if err != nil || !hit || string(data) != `{"seed":42}` {
		t.Fatalf("Get() = %q, %v, %v, want stored entry", data, hit, err)
	}

	if err := c.Delete(ctx, "mosaic:abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "mosaic:abc"); hit {
		t.Error("Get() after Delete() hit")
	}
	if err := c.Delete(ctx, "mosaic:abc"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("Get() missed a live entry")
	}
	now = now.Add(time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() returned an expired entry")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry was not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("SGC"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v, want silent miss", hit, err)
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	for key, ttl := range map[string]time.Duration{"short": time.Second, "long": time.Hour, "forever": 0} {
		if err := c.Set(ctx, key, []byte(key), ttl); err != nil {
			t.Fatal(err)
		}
	}
	garbage := c.path("garbage")
	if err := os.MkdirAll(filepath.Dir(garbage), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(garbage, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Minute)
	n, err := c.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Prune() removed %d, want 2 (expired + corrupt)", n)
	}
	for _, key := range []string{"long", "forever"} {
		if _, hit, _ := c.Get(ctx, key); !hit {
			t.Errorf("Prune() removed live entry %q", key)
		}
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry survived Prune()")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.Prune(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("Prune(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache root removed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear() left %d entries", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := MosaicKeyOpts{Seed: 42, Width: 1000, Height: 1000, Cells: 100, Inks: []string{"#e25b73"}}

	mk := k.MosaicKey(base)
	if !strings.HasPrefix(mk, "mosaic:") || len(mk) != len("mosaic:")+64 {
		t.Errorf("MosaicKey = %q, want mosaic:<sha256>", mk)
	}
	if mk != k.MosaicKey(base) {
		t.Error("MosaicKey should be deterministic")
	}

	reseeded := base
	reseeded.Seed = 7
	if mk == k.MosaicKey(reseeded) {
		t.Error("Different seeds should produce different keys")
	}
	repainted := base
	repainted.Inks = []string{"#000000"}
	if mk == k.MosaicKey(repainted) {
		t.Error("Different inks should produce different keys")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Margin: 0.06})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Margin: 0.06})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if ak1 == k.ArtifactKey("hash456", ArtifactKeyOpts{Format: "svg", Margin: 0.06}) {
		t.Error("Different mosaic hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
	key := scoped.MosaicKey(MosaicKeyOpts{Seed: 1})
	if !strings.HasPrefix(key, "v1.2.0:mosaic:") {
		t.Errorf("ScopedKeyer MosaicKey should be prefixed: %s", key)
	}
	if got := KeyType(key); got != KeyTypeMosaic {
		t.Errorf("KeyType(%q) = %q, want %q", key, got, KeyTypeMosaic)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(nilInner.ArtifactKey("h", ArtifactKeyOpts{}), "p:artifact:") {
		t.Error("ScopedKeyer with nil inner should use DefaultKeyer")
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"mosaic:abc", "mosaic"},
		{"artifact:abc", "artifact"},
		{"scope:v1:artifact:abc", "artifact"},
		{"plain", ""},
		{":abc", ""},
	}
	for _, tt := range tests {
		if got := KeyType(tt.key); got != tt.want {
			t.Errorf("KeyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("Retryable should unwrap to the original error")
	}
	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestTransient(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	if !IsRetryable(Transient(opErr)) {
		t.Error("Transient(net.OpError) should be retryable")
	}
	plain := errors.New("WRONGTYPE")
	if Transient(plain) != plain {
		t.Error("Transient should pass non-network errors through")
	}
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
}

func TestBackoff(t *testing.T) {
	b := Backoff{Attempts: 4, Initial: time.Millisecond, Max: 2 * time.Millisecond}
	ctx := context.Background()

	calls := 0
	if err := b.Do(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err = %v, calls = %d, want nil, 1", err, calls)
	}

	calls = 0
	permanent := errors.New("permanent")
	if err := b.Do(ctx, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("permanent: err = %v, calls = %d, want permanent, 1", err, calls)
	}

	calls = 0
	err := b.Do(ctx, func() error {
		calls++
		if calls < 3 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("recover: err = %v, calls = %d, want nil, 3", err, calls)
	}

	calls = 0
	start := time.Now()
	err = b.Do(ctx, func() error { calls++; return Retryable(ErrNetwork) })
	if !IsRetryable(err) || calls != b.Attempts {
		t.Errorf("exhaust: err = %v, calls = %d, want retryable, %d", err, calls, b.Attempts)
	}
	// Waits are 1ms, 2ms, 2ms once capped.
	if d := time.Since(start); d < 5*time.Millisecond {
		t.Errorf("exhaust took %v, want at least 5ms of backoff", d)
	}

	calls = 0
	_ = Backoff{}.Do(ctx, func() error { calls++; return Retryable(ErrNetwork) })
	if calls != 1 {
		t.Errorf("zero Backoff made %d calls, want 1", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestNewRedisCacheErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := NewRedisCache(ctx, RedisConfig{URL: "http://localhost:6379"}); !sgerrors.Is(err, sgerrors.ErrCodeInvalidInput) {
		t.Errorf("NewRedisCache(http url) error = %v, want %s", err, sgerrors.ErrCodeInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisConfig{URL: "redis://127.0.0.1:1/0", DialTimeout: 100 * time.Millisecond})
	if !sgerrors.Is(err, sgerrors.ErrCodeNetwork) {
		t.Errorf("NewRedisCache(unreachable) error = %v, want %s", err, sgerrors.ErrCodeNetwork)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("NewRedisCache(unreachable) error should wrap ErrNetwork: %v", err)
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	c := &RedisCache{prefix: DefaultRedisPrefix}
	if got := c.key("mosaic:abc"); got != "stainedglass:mosaic:abc" {
		t.Errorf("key() = %q", got)
	}
}

type countingHooks struct {
	observability.Noop
	hits, misses, sets int
	lastType           string
}

func (h *countingHooks) OnCacheHit(_ context.Context, keyType string)  { h.hits++; h.lastType = keyType }
func (h *countingHooks) OnCacheMiss(_ context.Context, keyType string) { h.misses++; h.lastType = keyType }
func (h *countingHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.sets++
	h.lastType = keyType
}

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc)

	key := NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	_, _, _ = c.Get(ctx, key)
	_ = c.Set(ctx, key, []byte("<svg/>"), TTLArtifact)
	_, _, _ = c.Get(ctx, key)

	if hooks.misses != 1 || hooks.sets != 1 || hooks.hits != 1 {
		t.Errorf("hooks = %d misses, %d sets, %d hits, want 1 each", hooks.misses, hooks.sets, hooks.hits)
	}
	if hooks.lastType != KeyTypeArtifact {
		t.Errorf("key type = %q, want %q", hooks.lastType, KeyTypeArtifact)
	}

	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Errorf("Clear() error = %v", err)
	}
	if _, hit, _ := fc.Get(ctx, key); hit {
		t.Error("Clear() through Instrument did not reach the file cache")
	}
	if Instrument(nil) != nil {
		t.Error("Instrument(nil) should be nil")
	}
}
