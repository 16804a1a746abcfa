// Package server exposes the summary and PDF flows over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgtlunion/konspekt/pipeline"
	"github.com/dgtlunion/konspekt/storage"
)

// DefaultMaxBodyBytes matches the largest transcript the service accepts.
const DefaultMaxBodyBytes = 50 << 20

// Config holds server configuration
type Config struct {
	Addr string
	// WebhookSecret enables Fireflies signature checks when set.
	WebhookSecret string
	AllowOrigin   string
	MaxBodyBytes  int64
	// Diagnostics mounts the echo and self-test routes.
	Diagnostics bool
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	svc         *pipeline.Service
	store       *storage.Store
	logger      *log.Logger
	secret      string
	allowOrigin string
	maxBody     int64
	diagnostics bool
}

// New creates a server. store may be nil, which disables the /pdfs routes.
func New(cfg Config, svc *pipeline.Service, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.AllowOrigin == "" {
		cfg.AllowOrigin = "*"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		svc:         svc,
		store:       store,
		logger:      logger,
		secret:      cfg.WebhookSecret,
		allowOrigin: cfg.AllowOrigin,
		maxBody:     cfg.MaxBodyBytes,
		diagnostics: cfg.Diagnostics,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // summaries wait on the model
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withRequestID, s.withLogging, middleware.Recoverer, s.withCORS)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/generate-summary", s.handleGenerateSummary)
		r.Post("/generate-pdf", s.handleGeneratePDF)
		r.Post("/generate-pdf-save", s.handleGeneratePDFSave)
		r.Get("/pdfs", s.handleListPDFs)
		r.Get("/pdfs/{name}", s.handleDownloadPDF)
		r.Delete("/pdfs/{name}", s.handleDeletePDF)
		r.Post("/webhook/fireflies", s.handleFirefliesWebhook)
		r.Post("/n8n-webhook", s.handleN8NWebhook)
		r.Post("/process-session", s.handleProcessSession)
		if s.diagnostics {
			r.Get("/vapi/test", s.handleEchoStatus)
			r.Post("/vapi/test", s.handleEcho)
			r.Get("/test-n8n", s.handleTestN8N)
			r.Post("/test-fireflies", s.handleTestFireflies)
		}
	})
	return r
}

// Start serves until ctx is canceled, then drains in-flight requests for up
// to 30 seconds.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", "err", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure logs err and answers with its mapped status. Server errors keep
// their details out of the response body.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.requestLogger(r).Error(message, "err", err)
		s.jsonResponse(w, status, map[string]string{"error": message, "details": publicDetail(err)})
		return
	}
	s.requestLogger(r).Warn(message, "err", err, "status", status)
	s.errorResponse(w, status, err.Error())
}

func publicDetail(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrUnavailable):
		return "not configured"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "internal error"
	}
}

// decodeJSON reads a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &pipeline.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}
