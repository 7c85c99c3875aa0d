// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/bidhub/internal/adapters/repository"
	service "github.com/okian/bidhub/internal/app"
	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/internal/domain/types"
	"github.com/okian/bidhub/pkg/logger"
	"github.com/okian/bidhub/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider
	Pinger

	Register(ctx context.Context, in service.Registration) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) (*model.User, error)
	Earnings(ctx context.Context, freelancerID string) (*model.Earnings, error)

	Categories() []model.Category
	CreateJob(ctx context.Context, in service.JobInput) (*model.Job, error)
	ListJobs(ctx context.Context, f model.JobFilter) ([]model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error

	SubmitApplication(ctx context.Context, in service.ApplicationInput) (*model.Application, error)
	ListApplications(ctx context.Context, f repository.ApplicationFilter) ([]model.Application, error)
	AcceptApplication(ctx context.Context, id string) (*model.Application, error)
	CompleteProject(ctx context.Context, id string) (*model.Application, error)

	PlaceBid(ctx context.Context, in service.BidInput) (*model.Bid, error)
	ListBids(ctx context.Context, f repository.BidFilter) ([]model.Bid, error)
	AcceptBid(ctx context.Context, id string) (*model.Bid, error)

	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error)

	Leaderboard(ctx context.Context, offset, limit int) ([]Entry, error)
	Rank(ctx context.Context, freelancerID string) (Entry, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Option configures the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed by the CORS middleware.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger used for access logs and server errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the marketplace API.
type Server struct {
	deps        Dependencies
	corsOrigins []string
	logger      logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		corsOrigins:   []string{"http://localhost:5173"},
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /health", "health", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	route("POST /auth/register", "auth_register", s.handleRegister)
	route("POST /auth/login", "auth_login", s.handleLogin)
	route("GET /auth/users/{id}", "auth_user", s.handleGetUser)
	route("PATCH /auth/users/{id}", "auth_user_update", s.handleUpdateProfile)
	route("GET /auth/users/{id}/earnings", "auth_user_earnings", s.handleEarnings)

	route("GET /categories", "categories", s.handleCategories)
	route("POST /jobs", "jobs_create", s.handleCreateJob)
	route("GET /jobs", "jobs_list", s.handleListJobs)
	route("GET /jobs/{id}", "jobs_get", s.handleGetJob)
	route("DELETE /jobs/{id}", "jobs_delete", s.handleDeleteJob)

	route("POST /applications", "applications_create", s.handleSubmitApplication)
	route("GET /applications", "applications_list", s.handleListApplications)
	route("PATCH /applications/{id}/accept", "applications_accept", s.handleAcceptApplication)
	route("PATCH /applications/{id}/complete", "applications_complete", s.handleCompleteProject)

	route("POST /bids", "bids_create", s.handlePlaceBid)
	route("GET /bids", "bids_list", s.handleListBids)
	route("PATCH /bids/{id}/accept", "bids_accept", s.handleAcceptBid)

	route("GET /notifications", "notifications_list", s.handleListNotifications)
	route("PATCH /notifications/{id}/read", "notifications_read", s.handleMarkRead)

	route("GET /leaderboard", "leaderboard", s.handleLeaderboard)
	route("GET /leaderboard/{id}", "leaderboard_rank", s.handleRank)
}

// Handler wraps mux with the request-id, access-log, recovery and CORS
// middleware, outermost first.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return Chain(mux,
		RequestID,
		AccessLog(s.logger),
		Recover(s.logger),
		CORS(s.corsOrigins),
	)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOK writes {"success": true, key: v}. An empty key writes the bare flag.
func writeOK(w http.ResponseWriter, key string, v any) {
	body := map[string]any{"success": true}
	if key != "" {
		body[key] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "bad_request", validationMessage(err))
}

// writeServiceError maps service error kinds to status codes. Unknown
// errors are logged and reported as a generic server error.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	msg := service.Message(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("requestId", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
		msg = "Server error"
	}
	writeError(w, status, code, msg)
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrApplicationsClosed):
		return http.StatusBadRequest, "applications_closed"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict, "duplicate_email"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
