package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SessionCookieName is the cookie forwarded to remote endpoints as Auth.SessionCookie.
const SessionCookieName = "sessionid"

// Engine is the navigation surface served over HTTP.
type Engine interface {
	ports.Navigator
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Server routes HTTP requests to the Engine.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Version string

	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Post("/install", s.Install)
	r.Post("/navigate", s.Navigate)
	r.Post("/details", s.Details)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/rebuild", s.Rebuild)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authFrom lifts the caller's credentials so they can be forwarded to remote endpoints.
func authFrom(r *http.Request) domain.Auth {
	var auth domain.Auth
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		auth.Token = strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		auth.SessionCookie = c.Value
	}
	return auth
}

// Install handles POST /install.
func (s *Server) Install(w http.ResponseWriter, r *http.Request) {
	var body domain.InstallRequest
	if !s.decode(w, r, &body) {
		return
	}
	body.Auth = authFrom(r)

	resp, err := s.Engine.Install(r.Context(), body)
	if err != nil {
		s.fail(w, "Install", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

// Navigate handles POST /navigate.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	var body domain.NavigationRequest
	if !s.decode(w, r, &body) {
		return
	}
	body.Auth = authFrom(r)

	resp, err := s.Engine.Advance(r.Context(), body)
	if err != nil {
		s.fail(w, "Navigate", err)
		return
	}
	s.broadcast(resp)
	s.writeJSON(w, http.StatusOK, resp)
}

// Rebuild handles POST /sessions/{sessionID}/rebuild.
func (s *Server) Rebuild(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Engine.Rebuild(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "Rebuild", err)
		return
	}
	s.broadcast(resp)
	s.writeJSON(w, http.StatusOK, resp)
}

// Details handles POST /details.
func (s *Server) Details(w http.ResponseWriter, r *http.Request) {
	var body domain.DetailRequest
	if !s.decode(w, r, &body) {
		return
	}
	body.Auth = authFrom(r)

	detail, err := s.Engine.Details(r.Context(), body)
	if err != nil {
		s.fail(w, "Details", err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

// GetSession handles GET /sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.Engine.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "casenav-http",
		"version": strings.TrimSpace(s.Version),
	})
}

func (s *Server) broadcast(resp *domain.Response) {
	s.Streams.Publish(resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// fail maps engine errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "status", status, "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrAppNotFound),
		errors.Is(err, domain.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotEntityScreen),
		errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
