package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/buildinfo"
	"github.com/matzehuels/stainedglass/pkg/core/rng"
	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/observability"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

const (
	defaultAddr     = ":8080"
	defaultMaxCells = 2000
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// serveOpts holds the flags for the serve command.
type serveOpts struct {
	addr     string
	maxCells int
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		so serveOpts
		cf cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve mosaics over HTTP",
		Long: `Serve mosaics over HTTP.

Endpoints:
  GET /healthz                       liveness and version
  GET /palettes                      available palettes as JSON
  GET /mosaic?seed=42&cells=200      a mosaic, format chosen by ?format=
  GET /mosaic/{seed}.{format}        a mosaic by seed, e.g. /mosaic/42.png

Query parameters: seed, w, h, cells, palette, format, inset, network, seam,
jitter, extra, exact, margin, borderless, streaks, scale, labels.
Responses are deterministic and cached with a strong ETag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.config.Serve.Addr != "" {
				so.addr = c.config.Serve.Addr
			}
			if !cmd.Flags().Changed("max-cells") && c.config.Serve.MaxCells > 0 {
				so.maxCells = c.config.Serve.MaxCells
			}
			base, err := c.buildOptions(cmd, nil, nil)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), base, so, cf)
		},
	}

	cmd.Flags().StringVar(&so.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().IntVar(&so.maxCells, "max-cells", defaultMaxCells, "largest cell count a request may ask for")
	cf.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, base pipeline.Options, so serveOpts, cf cacheFlags) error {
	runner, err := c.newRunner(ctx, cf.noCache, cf.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	s := newServer(runner, base, so.maxCells, c.Logger)
	observability.SetAll(observability.Tee{observability.NewLogHooks(c.Logger), s.stats})

	srv := &http.Server{
		Addr:              so.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printSuccess("Serving on %s", StyleLink.Render("http://"+displayAddr(so.addr)))
	printDetail("max %d cells per mosaic · %d palettes", so.maxCells, base.Palettes.Len())

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", so.addr)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// =============================================================================
// Server
// =============================================================================

// server answers mosaic requests through a shared pipeline runner.
type server struct {
	runner   *pipeline.Runner
	base     pipeline.Options
	maxCells int
	logger   *log.Logger
	stats    *observability.Counters
}

func newServer(runner *pipeline.Runner, base pipeline.Options, maxCells int, logger *log.Logger) *server {
	if maxCells <= 0 {
		maxCells = defaultMaxCells
	}
	return &server{
		runner:   runner,
		base:     base,
		maxCells: maxCells,
		logger:   logger,
		stats:    observability.NewCounters(),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/palettes", s.handlePalettes)
	r.Get("/mosaic", s.handleMosaic)
	r.Get("/mosaic/{seed}.{format}", s.handleMosaic)
	return r
}

type ctxKeyRequestID struct{}

// requestID tags each request with a UUID, reusing a valid incoming
// X-Request-Id.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

// observe logs each request and reports it to the HTTP hooks.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.logger.Info("request",
			"id", requestIDFrom(r.Context())[:8],
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d.Round(time.Microsecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.base.Palettes.All())
}

func (s *server) handleMosaic(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	etag := fmt.Sprintf(`"%s-%s"`, result.MosaicHash[:16], format)
	h := w.Header()
	h.Set("Content-Type", pipeline.ContentTypes[format])
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
	h.Set("ETag", etag)
	h.Set("X-Run-Id", result.RunID)
	h.Set("X-Mosaic-Seed", strconv.FormatUint(uint64(result.Mosaic.Seed), 10))
	h.Set("X-Next-Seed", strconv.FormatUint(uint64(result.Mosaic.NextSeed), 10))
	h.Set("X-Mosaic-Palette", result.Mosaic.Palette.Name)
	h.Set("X-Cache", cacheStatus(result.CacheInfo))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func cacheStatus(ci pipeline.CacheInfo) string {
	switch {
	case ci.MosaicHit && ci.RenderHit:
		return "hit"
	case ci.MosaicHit:
		return "partial"
	default:
		return "miss"
	}
}

// requestOptions builds pipeline options from the path and query, on top
// of the configured defaults.
func (s *server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	opts.Formats = []string{pipeline.FormatSVG}
	q := queryParser{values: r.URL.Query()}

	seedStr := chi.URLParam(r, "seed")
	if seedStr == "" {
		seedStr = q.values.Get("seed")
	}
	if seedStr == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "seed is required")
	}
	seed, err := strconv.ParseInt(seedStr, 10, 64)
	if err != nil {
		return opts, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q: want an integer", seedStr)
	}
	opts.Seed = rng.NormalizeSeed(seed)

	format := chi.URLParam(r, "format")
	if format == "" {
		format = q.values.Get("format")
	}
	if format == pipeline.Extension(pipeline.FormatTopology) {
		format = pipeline.FormatTopology
	}
	if format != "" {
		if err := pipeline.ValidateFormat(format); err != nil {
			return opts, err
		}
		opts.Formats = []string{format}
	}

	q.float("w", &opts.Width)
	q.float("h", &opts.Height)
	q.int("cells", &opts.Cells)
	q.string("palette", &opts.Palette)
	q.float("inset", &opts.Inset)
	q.float("jitter", &opts.Jitter)
	q.float("extra", &opts.Extra)
	q.string("network", &opts.Network)
	q.string("seam", &opts.Seam)
	q.float("margin", &opts.Margin)
	q.float("scale", &opts.Scale)
	q.bool("exact", &opts.ExactGrid)
	q.bool("borderless", &opts.Borderless)
	q.bool("labels", &opts.Labels)
	streaks := true
	q.bool("streaks", &streaks)
	opts.NoStreaks = !streaks
	if q.err != nil {
		return opts, q.err
	}

	if opts.Cells != 0 {
		if err := errors.ValidateCellCount(opts.Cells, s.maxCells); err != nil {
			return opts, err
		}
	} else if pipeline.DefaultCells > s.maxCells {
		opts.Cells = s.maxCells
	}
	if err := opts.ValidateSiteCount(2 * s.maxCells); err != nil {
		return opts, err
	}
	return opts, nil
}

// queryParser reads typed query parameters, keeping the first error.
type queryParser struct {
	values url.Values
	err    error
}

func (q *queryParser) get(key string) string { return q.values.Get(key) }

func (q *queryParser) string(key string, dst *string) {
	if v := q.get(key); v != "" {
		*dst = v
	}
}

func (q *queryParser) float(key string, dst *float64) {
	v := q.get(key)
	if v == "" || q.err != nil {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		q.err = errors.New(errors.ErrCodeInvalidInput, "invalid %s %q: want a number", key, v)
		return
	}
	*dst = f
}

func (q *queryParser) int(key string, dst *int) {
	v := q.get(key)
	if v == "" || q.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.err = errors.New(errors.ErrCodeInvalidInput, "invalid %s %q: want an integer", key, v)
		return
	}
	*dst = n
}

func (q *queryParser) bool(key string, dst *bool) {
	v := q.get(key)
	if v == "" || q.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.err = errors.New(errors.ErrCodeInvalidInput, "invalid %s %q: want true or false", key, v)
		return
	}
	*dst = b
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", requestIDFrom(r.Context()), "err", err)
	}
	code := errors.CodeOr(err, errors.ErrCodeInternal)
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
