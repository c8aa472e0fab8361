package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vschema/internal/config"
	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/expr"
	"github.com/vango-dev/vschema/pkg/metrics"
	"github.com/vango-dev/vschema/pkg/processor"
	"github.com/vango-dev/vschema/pkg/registry"
	"github.com/vango-dev/vschema/pkg/render"
	"github.com/vango-dev/vschema/pkg/schema"
	"github.com/vango-dev/vschema/pkg/source"
	"github.com/vango-dev/vschema/pkg/style"
)

// maxRequestBody caps POST /api/render payloads.
const maxRequestBody = 4 << 20

// Options configures the preview server.
type Options struct {
	// Source is the schema location served at "/". Empty serves only the
	// API.
	Source string

	// Config supplies render and server settings (default: config.New()).
	Config *config.Config

	// Registry resolves component tags (default: registry.Builtins()).
	Registry registry.Registry

	// S3 is used for s3:// sources.
	S3 source.ObjectGetter

	// Logger for request and diagnostic logs (default: slog.Default()).
	Logger *slog.Logger
}

// Server serves rendered previews of a schema document.
type Server struct {
	opts     Options
	cfg      *config.Config
	logger   *slog.Logger
	html     *render.Renderer
	reload   *ReloadServer
	metrics  *metrics.Collector
	registry *prometheus.Registry
	tracer   trace.Tracer
	router   chi.Router

	mu      sync.RWMutex
	doc     *schema.Document
	loadErr error
}

// New creates a preview server. The source, if any, is loaded on Start or
// Load; until then "/" reports that nothing is loaded.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.New()
	}
	if opts.Registry == nil {
		opts.Registry = registry.Builtins()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		opts:     opts,
		cfg:      opts.Config,
		logger:   opts.Logger,
		html:     render.NewRenderer(render.RendererConfig{Pretty: opts.Config.Render.Pretty, Minify: opts.Config.Render.Minify}),
		reload:   NewReloadServer(),
		metrics:  metrics.New(metrics.WithRegistry(reg)),
		registry: reg,
		tracer:   otel.Tracer("vschema/preview"),
	}
	s.reload.onBroadcast = func(ReloadMessage) { s.metrics.RecordReload() }
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.traceRequests)

	r.Get("/", s.handlePage)
	r.Post("/api/render", s.handleRender)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if s.cfg.Server.MetricsPath != "" {
		r.Method(http.MethodGet, s.cfg.Server.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get(ReloadPath, s.reload.HandleWebSocket)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Load reads the configured source. On failure the previous document is
// kept and the error is shown on the page.
func (s *Server) Load(ctx context.Context) error {
	if s.opts.Source == "" {
		return nil
	}
	doc, err := source.Load(ctx, s.opts.Source, source.WithS3(s.opts.S3))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
	if err == nil {
		s.doc = doc
	}
	return err
}

// Refresh reloads the source and notifies connected browsers.
func (s *Server) Refresh(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("schema reload failed", slog.Any("error", err))
		s.reload.NotifyError(err.Error())
		return
	}
	s.logger.Info("schema reloaded", slog.String("source", s.opts.Source))
	s.reload.NotifyReload()
}

// Start loads the source, starts the file watcher when enabled, and serves
// until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("schema load failed", slog.Any("error", err))
	}

	if s.cfg.Server.Watch && s.opts.Source != "" && s.opts.Source != source.Stdin && !isRemote(s.opts.Source) {
		w, err := NewWatcher(s.opts.Source, s.cfg.DebounceDuration(), func(string) { s.Refresh(ctx) }, s.logger)
		if err != nil {
			return fmt.Errorf("watch %s: %w", s.opts.Source, err)
		}
		defer w.Close()
		go w.Run(ctx)
	}

	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", slog.String("url", s.cfg.URL()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.reload.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// renderResult is one processed document.
type renderResult struct {
	HTML        string   `json:"html"`
	CSS         string   `json:"css,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// renderDocument runs the processor with a fresh style sheet and
// diagnostic collector, so concurrent requests do not share either.
func (s *Server) renderDocument(ctx context.Context, doc *schema.Document, page bool) (*renderResult, error) {
	collector := &errors.Collector{}
	reporter := s.metrics.Reporter(errors.Multi(collector, errors.NewLogReporter(s.logger)))
	sheet := style.NewSheet(nil)
	left, right := s.cfg.Delimiters()

	p := processor.New(
		processor.WithEngine(expr.New(expr.WithReporter(reporter))),
		processor.WithRegistry(s.opts.Registry),
		processor.WithStyleSink(sheet),
		processor.WithObserver(s.metrics),
		processor.WithLogger(s.logger),
		processor.WithDelimiters(left, right),
	)
	nodes, err := p.RenderDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if page {
		data := render.PageData{
			Title:  s.cfg.Render.Title,
			Lang:   s.cfg.Render.Lang,
			Body:   nodes,
			Styles: []string{sheet.CSS()},
		}
		if s.cfg.Server.Watch {
			data.Scripts = append(data.Scripts, render.ScriptTag{Inline: ClientScript(ReloadPath)})
		}
		err = s.html.RenderPage(&buf, data)
	} else {
		err = s.html.RenderToWriter(&buf, nodes...)
	}
	if err != nil {
		return nil, err
	}

	res := &renderResult{HTML: buf.String(), CSS: sheet.CSS()}
	for _, d := range collector.Errors() {
		res.Diagnostics = append(res.Diagnostics, d.Error())
	}
	return res, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	doc, loadErr := s.doc, s.loadErr
	s.mu.RUnlock()

	if doc == nil {
		msg := "no schema loaded"
		if loadErr != nil {
			msg = loadErr.Error()
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}

	res, err := s.renderDocument(r.Context(), doc, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(res.HTML))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}

	doc, err := schema.Parse(buf.Bytes(), schema.FormatJSON)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "code": errors.Code(err)})
		return
	}

	res, err := s.renderDocument(r.Context(), doc, false)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error(), "code": errors.Code(err)})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// logRequests logs each request through slog.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// traceRequests starts a span per request.
func (s *Server) traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", ww.Status()))
		if ww.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(ww.Status()))
		}
	})
}
