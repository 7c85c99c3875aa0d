package api

import "net/http"

// handleRegister handles POST /auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	u, err := s.deps.Register(r.Context(), req.toInput())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "user", u)
}

// handleLogin handles POST /auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	u, err := s.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "user", u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.deps.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "user", u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	u, err := s.deps.UpdateProfile(r.Context(), r.PathValue("id"), req.toUpdate())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "user", u)
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Earnings(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "earnings", e)
}
