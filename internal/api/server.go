// Package api exposes the progress engine to the orchestration layer
// over HTTP.
package api

import (
	"net/http"

	"github.com/campus-ai/tutor-core/internal/metrics"
	"github.com/campus-ai/tutor-core/internal/progress"
)

// conversationHeader carries the caller's conversation id; it selects
// the session the engine persists the student id into.
const conversationHeader = "X-Conversation-ID"

// ServerConfig holds dependencies for the API server.
type ServerConfig struct {
	Engine          *progress.Engine
	Collector       *metrics.Collector
	Sessions        progress.SessionStore // defaults to in-memory sessions
	Hub             *Hub                  // defaults to a fresh hub
	ReportTokenHash string                // bcrypt hash; empty disables /v1/report.xlsx
}

// Server routes engine operations, metrics export, reports, and the
// live event stream.
type Server struct {
	engine          *progress.Engine
	collector       *metrics.Collector
	sessions        progress.SessionStore
	hub             *Hub
	reportTokenHash string
}

// NewServer creates an API server.
func NewServer(cfg ServerConfig) *Server {
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = progress.NewMemorySessionStore()
	}
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub()
	}
	return &Server{
		engine:          cfg.Engine,
		collector:       cfg.Collector,
		sessions:        sessions,
		hub:             hub,
		reportTokenHash: cfg.ReportTokenHash,
	}
}

// Hub returns the event hub so the engine's event logger can feed it.
func (s *Server) Hub() *Hub { return s.hub }

// Routes builds the HTTP router.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /v1/course/outline", s.handleOutline)
	mux.HandleFunc("POST /v1/progress/record", s.handleRecord)
	mux.HandleFunc("GET /v1/progress/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /v1/progress/next", s.handleNext)
	mux.HandleFunc("GET /v1/metrics", s.handleMetrics)
	mux.HandleFunc("GET /v1/report.xlsx", s.handleReport)
	mux.HandleFunc("GET /v1/events/ws", s.handleEvents)
	return mux
}

// session returns the conversation-scoped session, or a throwaway one
// when the caller supplies no conversation id.
func (s *Server) session(r *http.Request) progress.Session {
	if id := r.Header.Get(conversationHeader); id != "" {
		return s.sessions.Session(id)
	}
	return progress.NewMemorySession()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.engine.CourseOutline(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "curriculum unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
