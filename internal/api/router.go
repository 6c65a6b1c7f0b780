// Package api binds the external transports - the WebSocket stream, the
// batch HTTP endpoint and the health/metrics surface - to the session core
// and the engine capability.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/config"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/session"
)

// Server holds the handler dependencies.
type Server struct {
	cfg      *config.Config
	engine   engine.Engine
	sessions *session.Manager
}

// NewServer creates the API server.
func NewServer(cfg *config.Config, eng engine.Engine, sessions *session.Manager) *Server {
	return &Server{
		cfg:      cfg,
		engine:   eng,
		sessions: sessions,
	}
}

// Router constructs the HTTP router for the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Post("/api/transcribe", s.handleTranscribe)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// errorBody is the JSON error response shape.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}
