package service

import (
	"context"

	"github.com/okian/bidhub/internal/domain/types"
)

// Leaderboard returns a page of ranked freelancers. A limit below one
// uses the default; limits above the maximum are clamped.
func (s *Service) Leaderboard(ctx context.Context, offset, limit int) ([]types.Entry, error) {
	const op = "leaderboard"

	if offset < 0 {
		return nil, fail(op, ErrInvalidInput, "offset must not be negative")
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	entries, err := s.ranks.Page(ctx, offset, limit)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	return entries, nil
}

// Rank returns one freelancer's leaderboard entry.
func (s *Service) Rank(ctx context.Context, freelancerID string) (types.Entry, error) {
	e, err := s.ranks.Rank(ctx, freelancerID)
	if err != nil {
		return types.Entry{}, wrap("rank", "Freelancer not ranked", err)
	}
	return e, nil
}
