// Package notify turns marketplace events into per-user notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/pkg/logger"
	"github.com/okian/bidhub/pkg/metrics"
)

// ErrUnknownKind is returned for events the composer has no rule for.
var ErrUnknownKind = errors.New("unknown event kind")

// Store is the subset of persistence the composer reads and writes.
type Store interface {
	UserByID(ctx context.Context, id string) (*model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
	JobByID(ctx context.Context, id string) (*model.Job, error)
	ApplicationByID(ctx context.Context, id string) (*model.Application, error)
	BidByID(ctx context.Context, id string) (*model.Bid, error)
	ListBids(ctx context.Context, f repository.BidFilter) ([]model.Bid, error)
	CreateNotification(ctx context.Context, n *model.Notification) error
}

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithClock overrides time.Now for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Composer decides who hears about an event and stores their notifications.
// It satisfies worker.Handler.
type Composer struct {
	store  Store
	now    func() time.Time
	logger logger.Logger
}

// NewComposer creates a composer over store.
func NewComposer(store Store, opts ...Option) *Composer {
	c := &Composer{
		store:  store,
		now:    time.Now,
		logger: logger.Get().Named("notify"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle composes and stores the notifications for e.
func (c *Composer) Handle(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam
	var (
		out []model.Notification
		err error
	)
	switch e.Kind {
	case model.EventJobPosted:
		out, err = c.jobPosted(ctx, e.SubjectID)
	case model.EventApplicationSubmitted:
		out, err = c.applicationSubmitted(ctx, e.SubjectID)
	case model.EventApplicationAccepted:
		out, err = c.applicationAccepted(ctx, e.SubjectID)
	case model.EventProjectCompleted:
		out, err = c.projectCompleted(ctx, e.SubjectID)
	case model.EventBidPlaced:
		out, err = c.bidPlaced(ctx, e.SubjectID)
	case model.EventBidAccepted:
		out, err = c.bidAccepted(ctx, e.SubjectID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind)
	}
	if err != nil {
		return fmt.Errorf("compose %s: %w", e.ID, err)
	}

	for i := range out {
		n := &out[i]
		n.CreatedAt = c.now().UTC()
		if err := c.store.CreateNotification(ctx, n); err != nil {
			return fmt.Errorf("store notification for %s: %w", n.UserID, err)
		}
		metrics.RecordNotificationCreated(string(n.Type))
	}

	c.logger.Debug(ctx, "event composed",
		logger.String("eventId", e.ID),
		logger.Int("notifications", len(out)),
	)
	return nil
}

func (c *Composer) jobPosted(ctx context.Context, jobID string) ([]model.Notification, error) {
	job, err := c.store.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobDeleted || len(job.Skills) == 0 {
		return nil, nil
	}
	freelancers, err := c.store.ListUsersByRole(ctx, model.RoleFreelancer)
	if err != nil {
		return nil, err
	}

	var out []model.Notification
	for i := range freelancers {
		f := &freelancers[i]
		if !model.SharesSkill(f.Skills, job.Skills) {
			continue
		}
		out = append(out, model.Notification{
			UserID:  f.ID,
			Type:    model.NotifyJobMatch,
			Message: fmt.Sprintf("New job matching your skills: %s", job.Title),
			RefID:   job.ID,
		})
	}
	return out, nil
}

func (c *Composer) applicationSubmitted(ctx context.Context, appID string) ([]model.Notification, error) {
	app, err := c.store.ApplicationByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	job, err := c.store.JobByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	return []model.Notification{{
		UserID:  job.AdminID,
		Type:    model.NotifyNewApplication,
		Message: fmt.Sprintf("%s applied to %s", app.FreelancerName, job.Title),
		RefID:   app.ID,
	}}, nil
}

func (c *Composer) applicationAccepted(ctx context.Context, appID string) ([]model.Notification, error) {
	app, err := c.store.ApplicationByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	out := []model.Notification{{
		UserID:  app.FreelancerID,
		Type:    model.NotifyApplicationAccepted,
		Message: fmt.Sprintf("Your application for %s was accepted", app.JobTitle),
		RefID:   app.ID,
	}}
	if app.AcceptedBidID != "" {
		return out, nil
	}

	// accepted at the proposed price: every bidder lost
	bidders, err := c.rivalAdmins(ctx, &model.Bid{ApplicationID: app.ID}, model.BidOutbid)
	if err != nil {
		return nil, err
	}
	for _, adminID := range bidders {
		out = append(out, model.Notification{
			UserID:  adminID,
			Type:    model.NotifyCompetingBid,
			Message: fmt.Sprintf("%s accepted the application without a bid", app.FreelancerName),
			RefID:   app.ID,
		})
	}
	return out, nil
}

func (c *Composer) projectCompleted(ctx context.Context, appID string) ([]model.Notification, error) {
	app, err := c.store.ApplicationByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	return []model.Notification{{
		UserID:  app.FreelancerID,
		Type:    model.NotifyProjectCompleted,
		Message: fmt.Sprintf("Project %s marked complete ($%.2f)", app.JobTitle, app.AgreedPrice()),
		RefID:   app.ID,
	}}, nil
}

func (c *Composer) bidPlaced(ctx context.Context, bidID string) ([]model.Notification, error) {
	bid, err := c.store.BidByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	out := []model.Notification{{
		UserID:  bid.FreelancerID,
		Type:    model.NotifyBidReceived,
		Message: fmt.Sprintf("%s bid $%.2f on your application", bid.AdminName, bid.Amount),
		RefID:   bid.ApplicationID,
	}}

	rivals, err := c.rivalAdmins(ctx, bid, model.BidActive)
	if err != nil {
		return nil, err
	}
	for _, adminID := range rivals {
		out = append(out, model.Notification{
			UserID:  adminID,
			Type:    model.NotifyCompetingBid,
			Message: fmt.Sprintf("A competing bid of $%.2f was placed", bid.Amount),
			RefID:   bid.ApplicationID,
		})
	}
	return out, nil
}

func (c *Composer) bidAccepted(ctx context.Context, bidID string) ([]model.Notification, error) {
	bid, err := c.store.BidByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	out := []model.Notification{{
		UserID:  bid.FreelancerID,
		Type:    model.NotifyBidAccepted,
		Message: fmt.Sprintf("You accepted %s's bid of $%.2f", bid.AdminName, bid.Amount),
		RefID:   bid.ApplicationID,
	}}

	rivals, err := c.rivalAdmins(ctx, bid, model.BidOutbid)
	if err != nil {
		return nil, err
	}
	for _, adminID := range rivals {
		out = append(out, model.Notification{
			UserID:  adminID,
			Type:    model.NotifyCompetingBid,
			Message: fmt.Sprintf("You were outbid at $%.2f", bid.Amount),
			RefID:   bid.ApplicationID,
		})
	}
	return out, nil
}

// rivalAdmins lists the distinct admins, other than the bidder, holding a
// bid with status on the same application.
func (c *Composer) rivalAdmins(ctx context.Context, bid *model.Bid, status model.BidStatus) ([]string, error) {
	bids, err := c.store.ListBids(ctx, repository.BidFilter{ApplicationID: bid.ApplicationID})
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{bid.AdminID: {}}
	var out []string
	for i := range bids {
		b := &bids[i]
		if b.ID == bid.ID || b.Status != status {
			continue
		}
		if _, ok := seen[b.AdminID]; ok {
			continue
		}
		seen[b.AdminID] = struct{}{}
		out = append(out, b.AdminID)
	}
	return out, nil
}
