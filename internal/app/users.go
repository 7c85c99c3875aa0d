package service

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/internal/domain/password"
	"github.com/okian/bidhub/pkg/logger"
	"github.com/okian/bidhub/pkg/metrics"
)

// Registration is the input of Register.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	Skills   []string
	Bio      string
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in Registration) (*model.User, error) {
	const op = "register"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = model.NormalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, fail(op, ErrInvalidInput, "Missing required fields")
	}
	if !in.Role.Valid() {
		return nil, fail(op, ErrInvalidInput, "Role must be freelancer or admin")
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, password.ErrTooLong) {
		return nil, &Error{Op: op, Kind: ErrInvalidInput, Msg: "Password too long", Err: err}
	}
	if err != nil {
		return nil, wrap(op, "", err)
	}

	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Bio:          strings.TrimSpace(in.Bio),
		Skills:       model.NormalizeSkills(in.Skills),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &Error{Op: op, Kind: ErrDuplicateEmail, Msg: "Email already registered", Err: err}
		}
		return nil, wrap(op, "", err)
	}

	if u.Role == model.RoleFreelancer {
		s.ranks.Upsert(ctx, memberOf(u))
	}
	metrics.RecordUserRegistered(string(u.Role))
	s.logger.Info(ctx, "user registered", logger.String("userId", u.ID), logger.String("role", string(u.Role)))
	return u, nil
}

// Login checks the credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, plain string) (*model.User, error) {
	const op = "login"

	email = model.NormalizeEmail(email)
	if email == "" || plain == "" {
		return nil, fail(op, ErrInvalidInput, "Email and password are required")
	}

	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordLogin("unknown_email")
		return nil, fail(op, ErrInvalidCredentials, "Invalid credentials")
	}
	if err != nil {
		metrics.RecordLogin("error")
		return nil, wrap(op, "", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			metrics.RecordLogin("bad_password")
			return nil, fail(op, ErrInvalidCredentials, "Invalid credentials")
		}
		metrics.RecordLogin("error")
		return nil, wrap(op, "", err)
	}

	metrics.RecordLogin("success")
	return u, nil
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, wrap("get user", "Not found", err)
	}
	return u, nil
}

// UpdateProfile edits name, bio and skills. Nil fields stay unchanged.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) (*model.User, error) {
	const op = "update profile"

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fail(op, ErrInvalidInput, "Name cannot be empty")
		}
		upd.Name = &name
	}
	if upd.Bio != nil {
		bio := strings.TrimSpace(*upd.Bio)
		upd.Bio = &bio
	}
	if upd.Skills != nil {
		upd.Skills = model.NormalizeSkills(upd.Skills)
	}

	u, err := s.store.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, wrap(op, "Not found", err)
	}
	if u.Role == model.RoleFreelancer {
		s.ranks.Upsert(ctx, memberOf(u))
	}
	return u, nil
}

// Earnings sums the agreed prices of a freelancer's accepted and completed work.
func (s *Service) Earnings(ctx context.Context, freelancerID string) (*model.Earnings, error) {
	const op = "earnings"

	if _, err := s.store.UserByID(ctx, freelancerID); err != nil {
		return nil, wrap(op, "Not found", err)
	}
	apps, err := s.store.ListApplications(ctx, repository.ApplicationFilter{FreelancerID: freelancerID})
	if err != nil {
		return nil, wrap(op, "", err)
	}

	e := &model.Earnings{FreelancerID: freelancerID}
	for i := range apps {
		a := &apps[i]
		switch a.Status {
		case model.ApplicationAccepted:
			e.Pending += a.AgreedPrice()
			e.Accepted++
		case model.ApplicationCompleted:
			e.Completed += a.AgreedPrice()
			e.Finished++
		}
	}
	e.Total = e.Completed + e.Pending
	return e, nil
}
