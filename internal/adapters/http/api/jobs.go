package api

import (
	"net/http"

	"github.com/okian/bidhub/internal/domain/model"
)

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, "categories", s.deps.Categories())
}

// handleCreateJob handles POST /jobs.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	j, err := s.deps.CreateJob(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "job", j)
}

// handleListJobs handles GET /jobs?category=&adminId=&q=.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := s.deps.ListJobs(r.Context(), model.JobFilter{
		Category: q.Get("category"),
		AdminID:  q.Get("adminId"),
		Query:    q.Get("q"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "jobs", jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.deps.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "job", j)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteJob(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "", nil)
}
