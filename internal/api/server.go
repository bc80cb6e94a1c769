// Package api exposes the HTTP interface for the link gateway.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infotik/link-gateway/internal/config"
	"github.com/infotik/link-gateway/internal/preview"
	"github.com/infotik/link-gateway/internal/render"
	"github.com/infotik/link-gateway/internal/telemetry"
)

// Server wires HTTP handlers to the resolver and renderer.
type Server struct {
	router   chi.Router
	resolver *preview.Resolver
	renderer *render.Renderer
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	resolver *preview.Resolver,
	renderer *render.Renderer,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		resolver: resolver,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(30 * time.Second))
	r.Use(telemetry.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Get("/", s.redirectTo(cfg.Links.WebsiteURL, "website"))
	r.Get("/discord", s.redirectTo(cfg.Links.DiscordInviteURL, "discord"))
	r.Get("/video/{videoID}", s.previewHandler(preview.KindVideo, "videoID"))
	r.Get("/pulse/{pulseID}", s.previewHandler(preview.KindPulse, "pulseID"))
	// Deprecated alias kept for links minted before the /video route
	// existed. Video only, never a second content kind.
	r.Get("/api/{videoID}", s.previewHandler(preview.KindVideo, "videoID"))

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The upstream API is best-effort by design; reachability does not
	// gate readiness.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, s.logger)
}

// redirectTo issues a plain 302 toward a fixed destination.
func (s *Server) redirectTo(target string, destination string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		telemetry.ObserveRedirect(destination)
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// previewHandler serves the preview document for one content kind. Both
// kinds share this path; everything kind-specific lives in the preview
// package's profile table.
func (s *Server) previewHandler(kind preview.ContentKind, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := preview.ContentRef{Kind: kind, ID: chi.URLParam(r, param)}
		if ref.ID == "" {
			http.NotFound(w, r)
			return
		}

		meta := s.resolver.Resolve(r.Context(), ref)

		doc, err := s.renderer.Render(ref, meta)
		if err != nil {
			s.logger.Error("render preview failed",
				zap.String("kind", string(ref.Kind)),
				zap.String("id", ref.ID),
				zap.Error(err),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(doc); err != nil {
			s.logger.Debug("write preview failed", zap.Error(err))
		}
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}
