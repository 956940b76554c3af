package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
		r.Get("/commands/recent", s.handleRecentCommands)
	})

	return r
}

// handleHealth returns the server health status and, when wired, the
// current state of the stream connection supervisor.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": s.version,
	}
	if s.streamState != nil {
		body["stream"] = s.streamState()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleStats returns a snapshot of the current session statistics.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleRecentCommands returns the most recent dispatched commands for
// the current session, newest first.
//
// Query parameters:
//   - limit: maximum number of entries to return (default 50, max 200)
func (s *Server) handleRecentCommands(w http.ResponseWriter, r *http.Request) {
	if s.historyRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "command history is not enabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.historyRepo.RecentCommands(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to query recent commands", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"commands": entries,
		"count":    len(entries),
	})
}
