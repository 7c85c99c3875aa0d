package service

import (
	"context"
	"strings"
	"time"

	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/pkg/logger"
	"github.com/okian/bidhub/pkg/metrics"
)

// JobInput is the input of CreateJob.
type JobInput struct {
	Title           string
	Description     string
	Category        string
	ExperienceLevel string
	ProjectType     string
	Budget          string
	Duration        string
	Skills          []string
	Deadline        *time.Time
	AdminID         string
	AdminName       string
}

// CreateJob posts a job and notifies freelancers with matching skills.
func (s *Service) CreateJob(ctx context.Context, in JobInput) (*model.Job, error) {
	const op = "create job"

	j := &model.Job{
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Category:        strings.TrimSpace(in.Category),
		ExperienceLevel: strings.TrimSpace(in.ExperienceLevel),
		ProjectType:     strings.TrimSpace(in.ProjectType),
		Budget:          strings.TrimSpace(in.Budget),
		Duration:        strings.TrimSpace(in.Duration),
		Skills:          model.NormalizeSkills(in.Skills),
		AdminID:         strings.TrimSpace(in.AdminID),
		AdminName:       strings.TrimSpace(in.AdminName),
		Status:          model.JobActive,
		CreatedAt:       s.now().UTC(),
	}
	if j.Title == "" || j.Description == "" || j.Category == "" || j.AdminID == "" {
		return nil, fail(op, ErrInvalidInput, "Missing required fields")
	}
	if !model.IsCategory(j.Category) {
		return nil, fail(op, ErrInvalidInput, "Unknown category")
	}
	if j.ExperienceLevel == "" {
		j.ExperienceLevel = model.DefaultExperienceLevel
	}
	if j.ProjectType == "" {
		j.ProjectType = model.DefaultProjectType
	}
	if in.Deadline != nil {
		d := in.Deadline.UTC()
		j.Deadline = &d
	}

	if err := s.store.CreateJob(ctx, j); err != nil {
		return nil, wrap(op, "", err)
	}

	metrics.RecordJobPosted()
	s.logger.Info(ctx, "job posted", logger.String("jobId", j.ID), logger.String("adminId", j.AdminID))
	s.publish(ctx, model.EventJobPosted, j.ID, j.AdminID)
	return j, nil
}

// ListJobs returns active jobs matching f, newest first.
func (s *Service) ListJobs(ctx context.Context, f model.JobFilter) ([]model.Job, error) {
	jobs, err := s.store.ListJobs(ctx, f)
	if err != nil {
		return nil, wrap("list jobs", "", err)
	}
	return jobs, nil
}

// GetJob returns an active job. Deleted jobs are not found.
func (s *Service) GetJob(ctx context.Context, id string) (*model.Job, error) {
	const op = "get job"

	j, err := s.store.JobByID(ctx, id)
	if err != nil {
		return nil, wrap(op, "Not found", err)
	}
	if j.Status == model.JobDeleted {
		return nil, fail(op, ErrNotFound, "Not found")
	}
	return j, nil
}

// DeleteJob soft-deletes a job.
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	const op = "delete job"

	j, err := s.store.SoftDeleteJob(ctx, id, s.now().UTC())
	if err != nil {
		return wrap(op, "Not found", err)
	}
	metrics.RecordJobDeleted()
	s.logger.Info(ctx, "job deleted", logger.String("jobId", j.ID))
	return nil
}

// Categories lists the job categories.
func (s *Service) Categories() []model.Category {
	return model.Categories()
}
