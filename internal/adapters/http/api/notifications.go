package api

import (
	"net/http"
	"strconv"
)

// handleListNotifications handles GET /notifications?userId=&unread=true.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unread := false
	if raw := q.Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "unread must be true or false")
			return
		}
		unread = v
	}
	ns, err := s.deps.ListNotifications(r.Context(), q.Get("userId"), unread)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "notifications", ns)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.MarkNotificationRead(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "notification", n)
}
