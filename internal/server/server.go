// Package server is the dev-mode HTTP surface: it answers descriptor
// requests (path + preset query) with JSON and streams variant bytes for
// virtual identity URLs, generating them on demand. Per-request errors are
// 404s with a logged diagnostic; the serving process never crashes on them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vk/imagesetgo/internal/ctxlog"
	"github.com/vk/imagesetgo/internal/pipeline"
)

// hotCacheSize bounds the in-memory byte cache for recently served
// variants. The disk cache remains authoritative; this only skips disk
// reads for hot assets.
const hotCacheSize = 128

// cacheControl is the long-lived directive for variant responses. Variant
// URLs are content-derived, so they never need revalidation.
const cacheControl = "public, max-age=31536000, immutable"

// Server serves descriptors and on-demand variants for one dev session.
type Server struct {
	addr   string
	gen    *pipeline.Generator
	logger *slog.Logger
	hot    *lru.Cache[string, *pipeline.Variant]
}

// New creates a dev server around a serve-mode generator.
func New(addr string, gen *pipeline.Generator, logger *slog.Logger) (*Server, error) {
	hot, err := lru.New[string, *pipeline.Variant](hotCacheSize)
	if err != nil {
		return nil, err
	}
	return &Server{addr: addr, gen: gen, logger: logger, hot: hot}, nil
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc(pipeline.VirtualPrefix, s.handleVariant)
	mux.HandleFunc("/", s.handleDescriptor)
	return mux
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK\n"))
}

// handleVariant streams the bytes of a virtual identity URL, generating
// them on first request.
func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, pipeline.VirtualPrefix)
	ctx := ctxlog.WithLogger(r.Context(), s.logger)

	v, ok := s.hot.Get(id)
	if !ok {
		var err error
		if v, err = s.gen.Resolve(ctx, id); err != nil {
			s.logger.Warn("Variant request failed.", "identity", id, "error", err)
			http.NotFound(w, r)
			return
		}
		s.hot.Add(id, v)
	}

	w.Header().Set("Content-Type", v.Format.MIMEType())
	w.Header().Set("Cache-Control", cacheControl)
	w.Write(v.Data)
}

// handleDescriptor computes and returns the source-set descriptor for a
// path + preset request.
func (s *Server) handleDescriptor(w http.ResponseWriter, r *http.Request) {
	ctx := ctxlog.WithLogger(r.Context(), s.logger)
	req := pipeline.Request{
		Path:  strings.TrimPrefix(r.URL.Path, "/"),
		Query: r.URL.Query(),
	}

	desc, err := s.gen.Generate(ctx, req)
	if err != nil {
		// Every per-request failure is a 404 plus a diagnostic; the serving
		// process never treats them differently.
		s.logger.Warn("Descriptor request failed.", "path", req.Path, "error", err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(desc); err != nil {
		s.logger.Error("Failed to encode descriptor response.", "error", err)
	}
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
