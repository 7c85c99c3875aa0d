package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/bidhub/internal/domain/types"
	"github.com/okian/bidhub/pkg/logger"
)

// ErrLeaderboardMismatch means the served leaderboard disagrees with the
// completions the run performed.
var ErrLeaderboardMismatch = errors.New("leaderboard mismatch")

// leaderboardPage is the largest page the server accepts by default.
const leaderboardPage = 100

func (r *runner) verify(ctx context.Context) error {
	ids := make([]string, 0, len(r.w.completed))
	for id := range r.w.completed {
		ids = append(ids, id)
	}
	entries := make([]types.Entry, len(ids))

	failed := forEach(ctx, r.cfg.Workers, len(ids), func(ctx context.Context, i int) error {
		return r.client.Do(ctx, http.MethodGet, "/leaderboard/"+url.PathEscape(ids[i]), nil, "entry", &entries[i])
	}, r.onErr("rank lookup"))
	if failed > 0 {
		return fmt.Errorf("%w: %d rank lookups failed", ErrLeaderboardMismatch, failed)
	}

	var mismatches []error
	for i, e := range entries {
		if want := r.w.completed[ids[i]]; e.CompletedProjects != want {
			mismatches = append(mismatches, fmt.Errorf("%s: completedProjects %d, want %d", ids[i], e.CompletedProjects, want))
		}
	}
	r.stats.RankedChecked = len(entries)

	q := url.Values{"limit": {strconv.Itoa(leaderboardPage)}}
	var page []types.Entry
	if err := r.client.Do(ctx, http.MethodGet, "/leaderboard?"+q.Encode(), nil, "leaderboard", &page); err != nil {
		return err
	}
	if err := CheckDenseRanks(page); err != nil {
		mismatches = append(mismatches, err)
	}

	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %w", ErrLeaderboardMismatch, errors.Join(mismatches...))
	}

	if r.cfg.Verbose {
		for _, e := range page[:min(10, len(page))] {
			r.log.Info(ctx, "leader",
				logger.Int("rank", e.Rank),
				logger.String("freelancerId", e.FreelancerID),
				logger.String("name", e.Name),
				logger.Int("completedProjects", e.CompletedProjects),
			)
		}
	}
	return nil
}

// CheckDenseRanks verifies a leaderboard page starting at rank 1: counts
// never increase, ties share a rank and each drop adds exactly one.
func CheckDenseRanks(page []types.Entry) error {
	for i, e := range page {
		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("first entry has rank %d", e.Rank)
			}
			continue
		}
		prev := page[i-1]
		switch {
		case e.CompletedProjects > prev.CompletedProjects:
			return fmt.Errorf("entry %d (%d projects) above entry %d (%d projects)", i, e.CompletedProjects, i-1, prev.CompletedProjects)
		case e.CompletedProjects == prev.CompletedProjects && e.Rank != prev.Rank:
			return fmt.Errorf("tied entries %d and %d have ranks %d and %d", i-1, i, prev.Rank, e.Rank)
		case e.CompletedProjects < prev.CompletedProjects && e.Rank != prev.Rank+1:
			return fmt.Errorf("entry %d has rank %d after rank %d", i, e.Rank, prev.Rank)
		}
	}
	return nil
}
