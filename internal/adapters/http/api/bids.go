package api

import (
	"net/http"

	"github.com/okian/bidhub/internal/adapters/repository"
)

// handlePlaceBid handles POST /bids.
func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	b, err := s.deps.PlaceBid(r.Context(), req.toInput())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "bid", b)
}

// handleListBids handles GET /bids?applicationId= or ?adminId=.
func (s *Server) handleListBids(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bids, err := s.deps.ListBids(r.Context(), repository.BidFilter{
		ApplicationID: q.Get("applicationId"),
		AdminID:       q.Get("adminId"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "bids", bids)
}

func (s *Server) handleAcceptBid(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.AcceptBid(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, "bid", b)
}
