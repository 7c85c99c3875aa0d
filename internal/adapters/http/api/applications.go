package api

import (
	"net/http"

	"github.com/okian/bidhub/internal/adapters/repository"
)

// handleSubmitApplication handles POST /applications.
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	a, err := s.deps.SubmitApplication(r.Context(), req.toInput())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "application", a)
}

// handleListApplications handles GET /applications?jobId= or ?userId=.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	apps, err := s.deps.ListApplications(r.Context(), repository.ApplicationFilter{
		JobID:        q.Get("jobId"),
		FreelancerID: q.Get("userId"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "applications", apps)
}

func (s *Server) handleAcceptApplication(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.AcceptApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "application", a)
}

func (s *Server) handleCompleteProject(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.CompleteProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "application", a)
}
