package api

import (
	"net/http"
	"strconv"
)

// handleLeaderboard handles GET /leaderboard?limit=N&offset=M. A missing
// limit uses the service default.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := intParam(w, q.Get("limit"), "limit")
	if !ok {
		return
	}
	offset, ok := intParam(w, q.Get("offset"), "offset")
	if !ok {
		return
	}

	entries, err := s.deps.Leaderboard(r.Context(), offset, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "leaderboard", entries)
}

// handleRank handles GET /leaderboard/{id}.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	entry, err := s.deps.Rank(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "entry", entry)
}

// intParam parses an optional non-negative integer, writing a 400 on failure.
func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid "+name)
		return 0, false
	}
	return n, true
}
