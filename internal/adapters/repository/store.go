// Package repository defines the persistence interfaces of the marketplace.
package repository

import (
	"context"
	"time"

	"github.com/okian/bidhub/internal/domain/model"
)

// ApplicationFilter selects applications by job or by freelancer.
type ApplicationFilter struct {
	JobID        string
	FreelancerID string
}

// Empty reports whether no field is set.
func (f ApplicationFilter) Empty() bool { return f.JobID == "" && f.FreelancerID == "" }

// BidFilter selects bids by application or by admin.
type BidFilter struct {
	ApplicationID string
	AdminID       string
}

// Empty reports whether no field is set.
func (f BidFilter) Empty() bool { return f.ApplicationID == "" && f.AdminID == "" }

// Users persists accounts.
type Users interface {
	// CreateUser assigns u.ID. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) (*model.User, error)
	// IncrementCompleted adds one to the user's completed project count.
	IncrementCompleted(ctx context.Context, id string) (*model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

// Jobs persists job postings.
type Jobs interface {
	CreateJob(ctx context.Context, j *model.Job) error
	// JobByID returns deleted jobs too; callers decide visibility.
	JobByID(ctx context.Context, id string) (*model.Job, error)
	// ListJobs returns matching active jobs, newest first.
	ListJobs(ctx context.Context, f model.JobFilter) ([]model.Job, error)
	// SoftDeleteJob marks an active job deleted. Unknown or already
	// deleted jobs return ErrNotFound.
	SoftDeleteJob(ctx context.Context, id string, at time.Time) (*model.Job, error)
	IncrementApplications(ctx context.Context, jobID string) error
}

// Applications persists freelancer proposals.
type Applications interface {
	CreateApplication(ctx context.Context, a *model.Application) error
	ApplicationByID(ctx context.Context, id string) (*model.Application, error)
	// ListApplications returns matches newest first.
	ListApplications(ctx context.Context, f ApplicationFilter) ([]model.Application, error)
	// TransitionApplication applies change only if the current status is
	// allowed by it. Returns ErrNotFound or ErrConflict otherwise.
	TransitionApplication(ctx context.Context, id string, change model.ApplicationChange) (*model.Application, error)
}

// Bids persists admin offers.
type Bids interface {
	CreateBid(ctx context.Context, b *model.Bid) error
	BidByID(ctx context.Context, id string) (*model.Bid, error)
	// ListBids returns matches newest first.
	ListBids(ctx context.Context, f BidFilter) ([]model.Bid, error)
	SetBidStatus(ctx context.Context, id string, status model.BidStatus) (*model.Bid, error)
	// OutbidOthers marks every other bid on the application outbid.
	OutbidOthers(ctx context.Context, applicationID, keepID string) (int64, error)
}

// Notifications persists per-user messages.
type Notifications interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	// ListNotifications returns the user's notifications newest first.
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error)
}

// Store provides every collection plus lifecycle hooks.
type Store interface {
	Users
	Jobs
	Applications
	Bids
	Notifications

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
