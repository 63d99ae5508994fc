// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	POST /v1/canon          canonical form of a graph
//	POST /v1/refine         equitable refinement of a graph
//	POST /v1/isomorphic     isomorphism test between two graphs
//	GET  /v1/catalog        most frequently seen classes
//	GET  /v1/catalog/{hash} one class
//	GET  /healthz
//	GET  /metrics           Prometheus metrics, when configured
//
// Request bodies carry graphs in the JSON document shape of package io.
// Errors are JSON objects with a code and a message; the status follows the
// error code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/canonic/pkg/buildinfo"
	errs "github.com/matzehuels/canonic/pkg/errors"
	cio "github.com/matzehuels/canonic/pkg/io"
	"github.com/matzehuels/canonic/pkg/observability"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

const (
	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 8 << 20

	// DefaultMaxNodes is the search budget cap of a server built without
	// [WithMaxNodes].
	DefaultMaxNodes = 1_000_000
)

// Server handles API requests with a pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	metrics  http.Handler
	maxNodes int
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMaxNodes caps the search budget of every request. Requests asking for
// no budget or a larger one get n. n <= 0 removes the cap.
func WithMaxNodes(n int) Option {
	return func(s *Server) { s.maxNodes = n }
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		logger:   logger,
		maxNodes: DefaultMaxNodes,
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/canon", s.canon)
		r.Post("/refine", s.refine)
		r.Post("/isomorphic", s.isomorphic)
		r.Get("/catalog", s.listClasses)
		r.Get("/catalog/{hash}", s.getClass)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down", "timeout", shutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	}
}

// observe logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// requestOptions are the per-request search options.
type requestOptions struct {
	Descending bool   `json:"descending"`
	NoPrune    bool   `json:"no_prune"`
	MaxNodes   int    `json:"max_nodes"`
	Timeout    string `json:"timeout"`
	Record     bool   `json:"record"`
	Refresh    bool   `json:"refresh"`
}

type graphRequest struct {
	cio.Document
	Options requestOptions `json:"options"`
}

type compareRequest struct {
	G       cio.Document   `json:"g"`
	H       cio.Document   `json:"h"`
	Options requestOptions `json:"options"`
}

func (s *Server) canon(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if !s.decode(w, r, &req) {
		return
	}
	inst, opts, err := s.instance(req.Document, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Canonicalize(r.Context(), inst.Graph, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) refine(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if !s.decode(w, r, &req) {
		return
	}
	inst, opts, err := s.instance(req.Document, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Refine(r.Context(), inst.Graph, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) isomorphic(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return
	}
	g, opts, err := s.instance(req.G, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	h, _, err := s.instance(req.H, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Compare(r.Context(), g.Graph, h.Graph, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listClasses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	entries, err := s.runner.Classes(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": entries})
}

func (s *Server) getClass(w http.ResponseWriter, r *http.Request) {
	e, err := s.runner.Lookup(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// instance builds the graph and options of a request.
func (s *Server) instance(doc cio.Document, ro requestOptions) (cio.Instance, pipeline.Options, error) {
	inst, err := doc.Instance()
	if err != nil {
		return cio.Instance{}, pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Partition:  inst.Partition,
		Descending: ro.Descending,
		NoPrune:    ro.NoPrune,
		MaxNodes:   ro.MaxNodes,
		Record:     ro.Record,
		Refresh:    ro.Refresh,
		Format:     pipeline.FormatJSON,
		Logger:     s.logger,
	}
	if ro.Timeout != "" {
		d, err := time.ParseDuration(ro.Timeout)
		if err != nil {
			return cio.Instance{}, pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "timeout")
		}
		opts.Timeout = d
	}
	if s.maxNodes > 0 && (opts.MaxNodes == 0 || opts.MaxNodes > s.maxNodes) {
		opts.MaxNodes = s.maxNodes
	}
	return inst, opts, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidFormat, err, "request body"))
		return false
	}
	return true
}

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := errs.HTTPStatus(code)
	if status >= http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		s.logger.Error("request failed", "error", err)
	}
	message := errs.UserMessage(err)
	if code == errs.ErrCodeInternal {
		message = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
