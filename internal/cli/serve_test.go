package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/observability"
	"github.com/matzehuels/stainedglass/pkg/palette"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

func newTestServer(t *testing.T, maxCells int) *httptest.Server {
	t.Helper()
	base := pipeline.Options{Palettes: palette.NewSet()}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := newServer(pipeline.NewRunner(nil, nil, logger), base, maxCells, logger)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t, 0)
	resp := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])

	_, err := uuid.Parse(resp.Header.Get("X-Request-Id"))
	assert.NoError(t, err, "every response carries a request id")
}

func TestServeRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t, 0)
	id := uuid.NewString()
	resp := get(t, ts.URL+"/healthz", "X-Request-Id", id)
	assert.Equal(t, id, resp.Header.Get("X-Request-Id"))

	resp = get(t, ts.URL+"/healthz", "X-Request-Id", "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get("X-Request-Id"))
}

func TestServeStats(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := newServer(pipeline.NewRunner(nil, nil, logger), pipeline.Options{Palettes: palette.NewSet()}, 50, logger)
	observability.SetAll(s.stats)
	t.Cleanup(observability.Reset)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)

	get(t, ts.URL+"/mosaic/3.json?w=200&h=200&cells=9")
	get(t, ts.URL+"/mosaic?w=200")

	resp := get(t, ts.URL+"/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap observability.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, int64(1), snap.Generated)
	assert.Equal(t, int64(1), snap.Rendered)
	assert.Equal(t, int64(1), snap.RequestErrors)
	assert.Equal(t, int64(1), snap.Responses["2xx"])
	assert.Equal(t, int64(1), snap.Responses["4xx"])
	assert.Equal(t, int64(3), snap.Requests, "the stats request itself is counted on arrival")
}

func TestServePalettes(t *testing.T) {
	ts := newTestServer(t, 0)
	resp := get(t, ts.URL+"/palettes")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ps []palette.Palette
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ps))
	require.Len(t, ps, 2)
	assert.Equal(t, "strawberry-mint", ps[0].Name)
}

func TestServeMosaicSVG(t *testing.T) {
	ts := newTestServer(t, 0)
	url := ts.URL + "/mosaic/42.svg?w=400&h=400&cells=30"

	resp := get(t, url)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "42", resp.Header.Get("X-Mosaic-Seed"))
	assert.NotEmpty(t, resp.Header.Get("X-Next-Seed"))
	assert.Equal(t, palette.Pick(42).Name, resp.Header.Get("X-Mosaic-Palette"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "<svg"))

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	again := get(t, url, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, again.StatusCode)
}

func TestServeNormalizesSeed(t *testing.T) {
	ts := newTestServer(t, 0)
	tests := []struct {
		seed string
		want string
	}{
		{"-1", "4294967295"},
		{"4294967338", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.seed, func(t *testing.T) {
			resp := get(t, ts.URL+"/mosaic?seed="+tt.seed+"&cells=9&w=200&h=200&format=json")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, resp.Header.Get("X-Mosaic-Seed"))
		})
	}

	path := get(t, ts.URL+"/mosaic/-1.json?cells=9&w=200&h=200")
	require.Equal(t, http.StatusOK, path.StatusCode)
	assert.Equal(t, "4294967295", path.Header.Get("X-Mosaic-Seed"))
}

func TestServeMosaicQuery(t *testing.T) {
	ts := newTestServer(t, 0)
	resp := get(t, ts.URL+"/mosaic?seed=7&format=json&w=300&h=300&cells=9&exact=true&palette=copper-sage")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	m, err := mosaic.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), m.Seed)
	assert.Len(t, m.Cells, 9)
	assert.Equal(t, "copper-sage", m.Palette.Name)
}

func TestServeTopology(t *testing.T) {
	ts := newTestServer(t, 0)
	resp := get(t, ts.URL+"/mosaic/7.topology.svg?w=300&h=300&cells=9")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
}

func TestServeErrors(t *testing.T) {
	ts := newTestServer(t, 100)
	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/mosaic", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/abc.svg", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/99999999999999999999.svg", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.gif", http.StatusBadRequest, "INVALID_FORMAT"},
		{"/mosaic/1.svg?cells=101", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.svg?w=-5", http.StatusBadRequest, "FRAME_INVALID"},
		{"/mosaic/1.svg?w=wide", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.svg?palette=nope", http.StatusBadRequest, "INVALID_PALETTE"},
		{"/mosaic/1.svg?network=hex", http.StatusBadRequest, "INVALID_NETWORK"},
		{"/mosaic/1.svg?exact=maybe", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.svg?extra=inf", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.svg?cells=100&extra=200", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.svg?w=20000&h=1&cells=50", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.svg?margin=inf", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.png?scale=100", http.StatusBadRequest, "INVALID_INPUT"},
		{"/mosaic/1.png?w=20000&h=20000&scale=10&cells=9", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
			}
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if body["code"] != tt.code {
				t.Errorf("GET %s code = %q, want %q (%s)", tt.path, body["code"], tt.code, body["error"])
			}
		})
	}
}

func TestRequestOptionsCapsDefaultCells(t *testing.T) {
	s := newServer(nil, pipeline.Options{}, 50, log.NewWithOptions(io.Discard, log.Options{}))
	req := httptest.NewRequest(http.MethodGet, "/mosaic?seed=3&streaks=false", nil)

	opts, err := s.requestOptions(req)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), opts.Seed)
	assert.Equal(t, 50, opts.Cells)
	assert.True(t, opts.NoStreaks)
	assert.Equal(t, []string{pipeline.FormatSVG}, opts.Formats)
}

func TestCacheStatus(t *testing.T) {
	assert.Equal(t, "hit", cacheStatus(pipeline.CacheInfo{MosaicHit: true, RenderHit: true}))
	assert.Equal(t, "partial", cacheStatus(pipeline.CacheInfo{MosaicHit: true}))
	assert.Equal(t, "miss", cacheStatus(pipeline.CacheInfo{}))
}
