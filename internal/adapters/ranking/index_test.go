package ranking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
)

func TestIndex_BasicOperations(t *testing.T) {
	ctx := context.Background()
	idx := New()

	if count := idx.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	idx.Upsert(ctx, Member{ID: "f1", Name: "Ada", Skills: []string{"go"}, CompletedProjects: 3})

	if count := idx.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := idx.Rank(ctx, "f1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Name != "Ada" || entry.CompletedProjects != 3 {
		t.Errorf("unexpected entry %+v", entry)
	}

	entries, err := idx.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].FreelancerID != "f1" {
		t.Errorf("unexpected top entries %+v", entries)
	}
}

func TestIndex_OrderingAndDenseRanks(t *testing.T) {
	ctx := context.Background()
	idx := New()

	idx.Upsert(ctx, Member{ID: "c", CompletedProjects: 5})
	idx.Upsert(ctx, Member{ID: "a", CompletedProjects: 5})
	idx.Upsert(ctx, Member{ID: "d", CompletedProjects: 2})
	idx.Upsert(ctx, Member{ID: "b", CompletedProjects: 9})
	idx.Upsert(ctx, Member{ID: "e", CompletedProjects: 0})

	entries, err := idx.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"b", "a", "c", "d", "e"}
	wantRanks := []int{1, 2, 2, 3, 4}
	if len(entries) != len(wantIDs) {
		t.Fatalf("expected %d entries, got %d", len(wantIDs), len(entries))
	}
	for i, e := range entries {
		if e.FreelancerID != wantIDs[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantIDs[i], e.FreelancerID)
		}
		if e.Rank != wantRanks[i] {
			t.Errorf("position %d: expected rank %d, got %d", i, wantRanks[i], e.Rank)
		}
	}

	if pos := idx.Position(ctx, "c"); pos != 2 {
		t.Errorf("expected position 2 for c, got %d", pos)
	}
	if pos := idx.Position(ctx, "missing"); pos != -1 {
		t.Errorf("expected -1 for unknown id, got %d", pos)
	}
}

func TestIndex_UpsertMovesMember(t *testing.T) {
	ctx := context.Background()
	idx := New()

	idx.Upsert(ctx, Member{ID: "a", CompletedProjects: 1})
	idx.Upsert(ctx, Member{ID: "b", CompletedProjects: 2})

	e, _ := idx.Rank(ctx, "a")
	if e.Rank != 2 {
		t.Fatalf("expected a at rank 2, got %d", e.Rank)
	}

	idx.Upsert(ctx, Member{ID: "a", CompletedProjects: 3})

	e, _ = idx.Rank(ctx, "a")
	if e.Rank != 1 {
		t.Errorf("expected a at rank 1 after completing a project, got %d", e.Rank)
	}
	if idx.Count(ctx) != 2 {
		t.Errorf("upsert must not duplicate members, count %d", idx.Count(ctx))
	}

	// The old level (1) is gone, so b stays at rank 2 rather than 3.
	e, _ = idx.Rank(ctx, "b")
	if e.Rank != 2 {
		t.Errorf("expected b at rank 2, got %d", e.Rank)
	}
}

func TestIndex_UpsertKeepsHigherCount(t *testing.T) {
	ctx := context.Background()
	idx := New()

	idx.Upsert(ctx, Member{ID: "a", Name: "Ada", CompletedProjects: 4})
	idx.Upsert(ctx, Member{ID: "b", CompletedProjects: 3})
	// a late write carrying an older count
	idx.Upsert(ctx, Member{ID: "a", Name: "Ada L.", CompletedProjects: 2})

	e, err := idx.Rank(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.CompletedProjects != 4 || e.Rank != 1 {
		t.Errorf("stale count moved a: %+v", e)
	}
	if e.Name != "Ada L." {
		t.Errorf("expected the new name, got %q", e.Name)
	}
}

func TestIndex_RemoveAndErrors(t *testing.T) {
	ctx := context.Background()
	idx := New()
	idx.Upsert(ctx, Member{ID: "a", CompletedProjects: 1})

	if !idx.Remove(ctx, "a") {
		t.Error("expected remove to report presence")
	}
	if idx.Remove(ctx, "a") {
		t.Error("second remove should report absence")
	}
	if _, err := idx.Rank(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := idx.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := idx.Page(ctx, -1, 5); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit for a negative offset, got %v", err)
	}
	entries, err := idx.TopN(ctx, 5)
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty leaderboard, got %v %v", entries, err)
	}
}

func TestIndex_Paging(t *testing.T) {
	ctx := context.Background()
	idx := New()
	for i := 0; i < 50; i++ {
		idx.Upsert(ctx, Member{ID: fmt.Sprintf("f%02d", i), CompletedProjects: i})
	}

	page, err := idx.Page(ctx, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(page))
	}
	// f49 is first; offset 10 starts at f39.
	for i, e := range page {
		want := fmt.Sprintf("f%02d", 39-i)
		if e.FreelancerID != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, e.FreelancerID)
		}
		if e.Rank != 11+i {
			t.Errorf("entry %d: expected rank %d, got %d", i, 11+i, e.Rank)
		}
	}

	tail, _ := idx.Page(ctx, 48, 10)
	if len(tail) != 2 {
		t.Errorf("expected 2 trailing entries, got %d", len(tail))
	}
	past, _ := idx.Page(ctx, 80, 10)
	if len(past) != 0 {
		t.Errorf("expected no entries past the end, got %d", len(past))
	}
}

func TestIndex_Replace(t *testing.T) {
	ctx := context.Background()
	idx := New()
	idx.Upsert(ctx, Member{ID: "stale", CompletedProjects: 100})

	idx.Replace(ctx, []Member{
		{ID: "x", CompletedProjects: 1},
		{ID: "y", CompletedProjects: 4},
		{ID: "x", CompletedProjects: 2},
	})

	if idx.Count(ctx) != 2 {
		t.Fatalf("expected 2 members, got %d", idx.Count(ctx))
	}
	if _, err := idx.Rank(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Error("replace should drop members that are not in the new set")
	}
	e, _ := idx.Rank(ctx, "x")
	if e.CompletedProjects != 2 || e.Rank != 2 {
		t.Errorf("expected the last duplicate to win, got %+v", e)
	}
}

func TestIndex_SkillsAreCopied(t *testing.T) {
	ctx := context.Background()
	idx := New()
	skills := []string{"go"}
	idx.Upsert(ctx, Member{ID: "a", Skills: skills})
	skills[0] = "changed"

	e, _ := idx.Rank(ctx, "a")
	if e.Skills[0] != "go" {
		t.Errorf("index must not alias caller slices, got %v", e.Skills)
	}
}

func TestIndex_RankCorrectnessUnderStress(t *testing.T) {
	ctx := context.Background()
	idx := New()
	r := rand.New(rand.NewSource(7))

	want := make(map[string]int)
	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("f%d", r.Intn(500))
		projects := r.Intn(40)
		if old, ok := want[id]; !ok || projects > old {
			want[id] = projects
		}
		idx.Upsert(ctx, Member{ID: id, CompletedProjects: projects})
		if r.Intn(10) == 0 {
			victim := fmt.Sprintf("f%d", r.Intn(500))
			idx.Remove(ctx, victim)
			delete(want, victim)
		}
	}

	distinct := make(map[int]struct{})
	for _, p := range want {
		distinct[p] = struct{}{}
	}
	levels := make([]int, 0, len(distinct))
	for p := range distinct {
		levels = append(levels, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	all, err := idx.TopN(ctx, len(want)+1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(all))
	}
	for i, e := range all {
		if i > 0 && !less(all[i-1].CompletedProjects, all[i-1].FreelancerID, e.CompletedProjects, e.FreelancerID) {
			t.Fatalf("entries out of order at %d", i)
		}
		wantRank := sort.Search(len(levels), func(j int) bool { return levels[j] <= e.CompletedProjects }) + 1
		if e.Rank != wantRank {
			t.Fatalf("%s: expected rank %d, got %d", e.FreelancerID, wantRank, e.Rank)
		}
		if pos := idx.Position(ctx, e.FreelancerID); pos != i {
			t.Fatalf("%s: expected position %d, got %d", e.FreelancerID, i, pos)
		}
	}
}

func TestIndex_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	idx := New()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("w%d-%d", w, i%20)
				idx.Upsert(ctx, Member{ID: id, CompletedProjects: i % 7})
				_, _ = idx.TopN(ctx, 10)
				_, _ = idx.Rank(ctx, id)
			}
		}(w)
	}
	wg.Wait()

	if idx.Count(ctx) != 8*20 {
		t.Errorf("expected %d members, got %d", 8*20, idx.Count(ctx))
	}
}

func BenchmarkIndex_Upsert(b *testing.B) {
	ctx := context.Background()
	idx := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Upsert(ctx, Member{ID: fmt.Sprintf("f%d", i%10000), CompletedProjects: i % 50})
	}
}

func BenchmarkIndex_TopN(b *testing.B) {
	ctx := context.Background()
	idx := New()
	for i := 0; i < 10000; i++ {
		idx.Upsert(ctx, Member{ID: fmt.Sprintf("f%d", i), CompletedProjects: i % 50})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.TopN(ctx, 100)
	}
}
