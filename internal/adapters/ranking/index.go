// Package ranking keeps the freelancer leaderboard in memory.
package ranking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/bidhub/internal/domain/types"
	"github.com/okian/bidhub/pkg/metrics"
)

// Member is a freelancer as the leaderboard sees them.
type Member struct {
	ID                string
	Name              string
	Skills            []string
	CompletedProjects int
}

// Index ranks members by completed projects with dense ranking: members
// with equal counts share a rank and the next count gets the next rank.
type Index struct {
	mu    sync.RWMutex
	root  *node
	byID  map[string]Member
	level map[int]int // completed projects -> members at that count
	desc  []int       // distinct counts, highest first
}

// New returns an empty index.
func New() *Index {
	return &Index{
		byID:  make(map[string]Member),
		level: make(map[int]int),
	}
}

// Upsert adds m or moves it to its new position. Completed counts only
// grow, so a lower count than the indexed one is treated as stale and only
// the name and skills are taken from m.
func (x *Index) Upsert(_ context.Context, m Member) {
	m.Skills = append([]string(nil), m.Skills...)

	x.mu.Lock()
	if old, ok := x.byID[m.ID]; ok {
		m.CompletedProjects = max(m.CompletedProjects, old.CompletedProjects)
		x.root = deleteNode(x.root, old.ID, old.CompletedProjects)
		x.dropLevel(old.CompletedProjects)
	}
	x.byID[m.ID] = m
	x.root = insert(x.root, m.ID, m.CompletedProjects)
	x.addLevel(m.CompletedProjects)
	n := len(x.byID)
	x.mu.Unlock()

	metrics.UpdateRankedFreelancers(n)
}

// Remove drops id from the index and reports whether it was present.
func (x *Index) Remove(_ context.Context, id string) bool {
	x.mu.Lock()
	old, ok := x.byID[id]
	if ok {
		x.root = deleteNode(x.root, id, old.CompletedProjects)
		x.dropLevel(old.CompletedProjects)
		delete(x.byID, id)
	}
	n := len(x.byID)
	x.mu.Unlock()

	if ok {
		metrics.UpdateRankedFreelancers(n)
	}
	return ok
}

// Replace swaps the whole index for members in one step.
func (x *Index) Replace(_ context.Context, members []Member) {
	start := time.Now()

	var root *node
	byID := make(map[string]Member, len(members))
	level := make(map[int]int)
	for _, m := range members {
		if old, dup := byID[m.ID]; dup {
			root = deleteNode(root, old.ID, old.CompletedProjects)
			if level[old.CompletedProjects]--; level[old.CompletedProjects] == 0 {
				delete(level, old.CompletedProjects)
			}
		}
		m.Skills = append([]string(nil), m.Skills...)
		byID[m.ID] = m
		root = insert(root, m.ID, m.CompletedProjects)
		level[m.CompletedProjects]++
	}
	desc := make([]int, 0, len(level))
	for c := range level {
		desc = append(desc, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(desc)))

	x.mu.Lock()
	x.root, x.byID, x.level, x.desc = root, byID, level, desc
	x.mu.Unlock()

	metrics.UpdateRankedFreelancers(len(byID))
	metrics.RecordRankingRebuild(float64(time.Since(start).Milliseconds()), float64(time.Now().Unix()))
}

// Rank returns the entry for id or ErrNotFound.
func (x *Index) Rank(_ context.Context, id string) (types.Entry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	m, ok := x.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("ranking", "not_found")
		return types.Entry{}, ErrNotFound
	}
	return x.entry(m), nil
}

// Page returns up to limit entries in rank order starting at offset.
func (x *Index) Page(_ context.Context, offset, limit int) ([]types.Entry, error) {
	if limit < 1 || offset < 0 {
		metrics.RecordErrorByComponent("ranking", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	nodes := make([]*node, 0, min(limit, len(x.byID)))
	collect(x.root, offset, limit, &nodes)

	out := make([]types.Entry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, x.entry(x.byID[n.id]))
	}
	return out, nil
}

// TopN returns the first n entries.
func (x *Index) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return x.Page(ctx, 0, n)
}

// Position returns the 0-based place of id in the full ordering, or -1.
func (x *Index) Position(_ context.Context, id string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	m, ok := x.byID[id]
	if !ok {
		return -1
	}
	return position(x.root, m.ID, m.CompletedProjects)
}

// Count returns the number of ranked freelancers.
func (x *Index) Count(_ context.Context) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byID)
}

// entry assumes the read lock is held.
func (x *Index) entry(m Member) types.Entry {
	return types.Entry{
		Rank:              x.denseRank(m.CompletedProjects),
		FreelancerID:      m.ID,
		Name:              m.Name,
		CompletedProjects: m.CompletedProjects,
		Skills:            append([]string(nil), m.Skills...),
	}
}

// denseRank is 1 + the number of distinct counts above projects.
func (x *Index) denseRank(projects int) int {
	return sort.Search(len(x.desc), func(i int) bool { return x.desc[i] <= projects }) + 1
}

func (x *Index) addLevel(projects int) {
	x.level[projects]++
	if x.level[projects] > 1 {
		return
	}
	i := sort.Search(len(x.desc), func(i int) bool { return x.desc[i] <= projects })
	x.desc = append(x.desc, 0)
	copy(x.desc[i+1:], x.desc[i:])
	x.desc[i] = projects
}

func (x *Index) dropLevel(projects int) {
	x.level[projects]--
	if x.level[projects] > 0 {
		return
	}
	delete(x.level, projects)
	i := sort.Search(len(x.desc), func(i int) bool { return x.desc[i] <= projects })
	if i < len(x.desc) && x.desc[i] == projects {
		x.desc = append(x.desc[:i], x.desc[i+1:]...)
	}
}
