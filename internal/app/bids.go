package service

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/pkg/logger"
	"github.com/okian/bidhub/pkg/metrics"
)

// BidInput is the input of PlaceBid.
type BidInput struct {
	ApplicationID string
	FreelancerID  string
	AdminID       string
	AdminName     string
	Amount        float64
}

// PlaceBid records an admin's offer on an open application.
func (s *Service) PlaceBid(ctx context.Context, in BidInput) (*model.Bid, error) {
	const op = "place bid"

	in.ApplicationID = strings.TrimSpace(in.ApplicationID)
	in.FreelancerID = strings.TrimSpace(in.FreelancerID)
	in.AdminID = strings.TrimSpace(in.AdminID)
	if in.ApplicationID == "" || in.FreelancerID == "" || in.AdminID == "" || !validAmount(in.Amount) {
		return nil, fail(op, ErrInvalidInput, "Missing required fields")
	}

	app, err := s.store.ApplicationByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, wrap(op, "Application not found", err)
	}
	if !app.Status.Open() {
		return nil, fail(op, ErrConflict, "Application is closed for bidding")
	}

	b := &model.Bid{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		FreelancerID:  in.FreelancerID,
		AdminID:       in.AdminID,
		AdminName:     strings.TrimSpace(in.AdminName),
		Amount:        in.Amount,
		Status:        model.BidActive,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateBid(ctx, b); err != nil {
		return nil, wrap(op, "", err)
	}

	if app.Status == model.ApplicationPending {
		_, err := s.store.TransitionApplication(ctx, app.ID, model.ApplicationChange{
			From: []model.ApplicationStatus{model.ApplicationPending},
			To:   model.ApplicationBidding,
		})
		// a concurrent bid or acceptance already moved it on
		if err != nil && !errors.Is(err, repository.ErrConflict) {
			s.logger.Warn(ctx, "application not moved to bidding", logger.String("applicationId", app.ID), logger.Error(err))
		}
	}

	metrics.RecordBidPlaced(b.Amount)
	s.publish(ctx, model.EventBidPlaced, b.ID, b.AdminID)
	return b, nil
}

// ListBids returns bids for an application or an admin, newest first. With
// no filter it returns an empty list.
func (s *Service) ListBids(ctx context.Context, f repository.BidFilter) ([]model.Bid, error) {
	if f.Empty() {
		return []model.Bid{}, nil
	}
	bids, err := s.store.ListBids(ctx, f)
	if err != nil {
		return nil, wrap("list bids", "", err)
	}
	return bids, nil
}

// AcceptBid accepts one bid, outbids the rest and fixes the application's
// final price at the bid amount.
func (s *Service) AcceptBid(ctx context.Context, id string) (*model.Bid, error) {
	const op = "accept bid"

	b, err := s.store.BidByID(ctx, id)
	if err != nil {
		return nil, wrap(op, "Bid not found", err)
	}
	if b.Status != model.BidActive {
		return nil, fail(op, ErrConflict, "Bid is no longer active")
	}

	// the application flips first so only one bid can win
	price := b.Amount
	if _, err := s.store.TransitionApplication(ctx, b.ApplicationID, model.ApplicationChange{
		From:          []model.ApplicationStatus{model.ApplicationPending, model.ApplicationBidding},
		To:            model.ApplicationAccepted,
		AcceptedBidID: b.ID,
		FinalPrice:    &price,
	}); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, &Error{Op: op, Kind: ErrConflict, Msg: "Application already accepted", Err: err}
		}
		return nil, wrap(op, "Application not found", err)
	}

	// the application is already settled; bid bookkeeping failures are
	// logged and left for an operator
	accepted, err := s.store.SetBidStatus(ctx, b.ID, model.BidAccepted)
	if err != nil {
		metrics.RecordErrorByComponent("service", "accept_bid_status")
		s.logger.Error(ctx, "accepted bid not marked accepted",
			logger.String("bidId", b.ID),
			logger.String("applicationId", b.ApplicationID),
			logger.Error(err),
		)
		accepted = b
		accepted.Status = model.BidAccepted
	}
	n, err := s.store.OutbidOthers(ctx, b.ApplicationID, b.ID)
	if err != nil {
		metrics.RecordErrorByComponent("service", "outbid_bids")
		s.logger.Error(ctx, "competing bids not marked outbid",
			logger.String("applicationId", b.ApplicationID),
			logger.Error(err),
		)
	}

	metrics.RecordBidAccepted()
	s.logger.Info(ctx, "bid accepted",
		logger.String("bidId", b.ID),
		logger.String("applicationId", b.ApplicationID),
		logger.Int64("outbid", n),
	)
	s.publish(ctx, model.EventBidAccepted, b.ID, b.FreelancerID)
	return accepted, nil
}
