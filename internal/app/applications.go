package service

import (
	"context"
	"strings"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/pkg/logger"
	"github.com/okian/bidhub/pkg/metrics"
)

// ApplicationInput is the input of SubmitApplication.
type ApplicationInput struct {
	JobID          string
	FreelancerID   string
	FreelancerName string
	Proposal       string
	ProposedPrice  float64
}

// SubmitApplication files a proposal against an open job.
func (s *Service) SubmitApplication(ctx context.Context, in ApplicationInput) (*model.Application, error) {
	const op = "submit application"

	in.JobID = strings.TrimSpace(in.JobID)
	in.FreelancerID = strings.TrimSpace(in.FreelancerID)
	in.Proposal = strings.TrimSpace(in.Proposal)
	if in.JobID == "" || in.FreelancerID == "" || in.Proposal == "" || !validAmount(in.ProposedPrice) {
		return nil, fail(op, ErrInvalidInput, "Missing required fields")
	}

	job, err := s.store.JobByID(ctx, in.JobID)
	if err != nil {
		return nil, wrap(op, "Job not found", err)
	}
	if job.Status == model.JobDeleted {
		return nil, fail(op, ErrNotFound, "Job not found")
	}
	now := s.now().UTC()
	if job.Closed(now) {
		return nil, fail(op, ErrApplicationsClosed, "Applications closed for this job")
	}

	a := &model.Application{
		JobID:          job.ID,
		JobTitle:       job.Title,
		FreelancerID:   in.FreelancerID,
		FreelancerName: strings.TrimSpace(in.FreelancerName),
		ProposedPrice:  in.ProposedPrice,
		Proposal:       in.Proposal,
		Status:         model.ApplicationPending,
		AppliedAt:      now,
	}
	if err := s.store.CreateApplication(ctx, a); err != nil {
		return nil, wrap(op, "", err)
	}
	if err := s.store.IncrementApplications(ctx, job.ID); err != nil {
		s.logger.Warn(ctx, "applications count not updated", logger.String("jobId", job.ID), logger.Error(err))
	}

	metrics.RecordApplicationSubmitted()
	s.publish(ctx, model.EventApplicationSubmitted, a.ID, a.FreelancerID)
	return a, nil
}

// ListApplications returns applications for a job or a freelancer, newest
// first. With no filter it returns an empty list.
func (s *Service) ListApplications(ctx context.Context, f repository.ApplicationFilter) ([]model.Application, error) {
	if f.Empty() {
		return []model.Application{}, nil
	}
	apps, err := s.store.ListApplications(ctx, f)
	if err != nil {
		return nil, wrap("list applications", "", err)
	}
	return apps, nil
}

// AcceptApplication accepts an open application at its proposed price.
func (s *Service) AcceptApplication(ctx context.Context, id string) (*model.Application, error) {
	const op = "accept application"

	a, err := s.store.TransitionApplication(ctx, id, model.ApplicationChange{
		From: []model.ApplicationStatus{model.ApplicationPending, model.ApplicationBidding},
		To:   model.ApplicationAccepted,
	})
	if err != nil {
		return nil, wrap(op, "Application not found", err)
	}

	// bids left on a directly accepted application can no longer win
	if n, err := s.store.OutbidOthers(ctx, a.ID, ""); err != nil {
		metrics.RecordErrorByComponent("service", "outbid_bids")
		s.logger.Error(ctx, "bids not closed after acceptance",
			logger.String("applicationId", a.ID),
			logger.Error(err),
		)
	} else if n > 0 {
		s.logger.Debug(ctx, "bids outbid", logger.String("applicationId", a.ID), logger.Int64("outbid", n))
	}

	metrics.RecordApplicationAccepted()
	s.logger.Info(ctx, "application accepted", logger.String("applicationId", a.ID))
	s.publish(ctx, model.EventApplicationAccepted, a.ID, "")
	return a, nil
}

// CompleteProject closes accepted work and credits the freelancer once.
func (s *Service) CompleteProject(ctx context.Context, id string) (*model.Application, error) {
	const op = "complete project"

	at := s.now().UTC()
	a, err := s.store.TransitionApplication(ctx, id, model.ApplicationChange{
		From:        []model.ApplicationStatus{model.ApplicationAccepted},
		To:          model.ApplicationCompleted,
		CompletedAt: &at,
	})
	if err != nil {
		return nil, wrap(op, "Application not found", err)
	}

	// the transition above succeeds once per application
	u, err := s.store.IncrementCompleted(ctx, a.FreelancerID)
	switch {
	case err != nil:
		metrics.RecordErrorByComponent("service", "increment_completed")
		s.logger.Error(ctx, "completed project not credited",
			logger.String("applicationId", a.ID),
			logger.String("freelancerId", a.FreelancerID),
			logger.Error(err),
		)
	case u.Role == model.RoleFreelancer:
		s.ranks.Upsert(ctx, memberOf(u))
	}

	metrics.RecordProjectCompleted()
	s.publish(ctx, model.EventProjectCompleted, a.ID, "")
	return a, nil
}
