// Package web exposes the session operations over HTTP: a streaming chat
// endpoint (SSE-framed events), a synchronous reset, and a health check.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chat "github.com/medifinder/chat/internal/chat/models"
	"github.com/medifinder/chat/internal/session"
)

const sessionCookie = "medifinder_session"

// HealthChecker reports tool-executor reachability for /api/health.
type HealthChecker interface {
	ToolNames() []string
	Ping(ctx context.Context) error
}

// Server is the HTTP boundary.
type Server struct {
	sessions *session.Manager
	health   HealthChecker
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates the HTTP server around a session manager.
func NewServer(sessions *session.Manager, health HealthChecker, logger *slog.Logger) *Server {
	s := &Server{
		sessions: sessions,
		health:   health,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.errorResponse(w, http.StatusBadRequest, "empty message")
		return
	}

	sess := s.sessionFor(w, r)

	ch, err := sess.StartTurn(r.Context(), message)
	if err != nil {
		if errors.Is(err, chat.ErrTurnActive) {
			s.errorResponse(w, http.StatusConflict, err.Error())
		} else {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorResponse(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	rc := http.NewResponseController(w)

	for ev := range ch {
		s.writeSSE(w, toWire(ev))
		flusher.Flush()

		// Reset the write deadline after every event so long tool calls
		// don't trip the server's write timeout.
		if err := rc.SetWriteDeadline(time.Now().Add(120 * time.Second)); err != nil {
			s.logger.Debug("failed to reset write deadline", "error", err)
		}
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	if err := sess.Reset(); err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"app": "ok",
	}

	if err := s.health.Ping(r.Context()); err != nil {
		status["mcp"] = "error"
		status["mcp_error"] = err.Error()
		status["tools"] = []string{}
	} else {
		status["mcp"] = "ok"
		status["tools"] = s.health.ToolNames()
	}

	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, status)
}

// sessionFor resolves the caller's session from the session cookie,
// creating one (and setting the cookie) when absent.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	sess := s.sessions.GetOrCreate(id)
	if sess.ID() != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
		})
	}
	return sess
}

func (s *Server) writeSSE(w http.ResponseWriter, ev wireEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Debug("failed to marshal SSE event", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		s.logger.Debug("failed to write SSE event", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write JSON response", "error", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	s.writeJSON(w, map[string]any{
		"error": message,
	})
}
