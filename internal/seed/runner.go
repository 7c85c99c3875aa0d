package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/pkg/logger"
)

const seedPassword = "seed-password"

// Random streams, one per step, so adding users does not reshuffle prices.
const (
	streamSkills uint64 = iota + 1
	streamJobs
	streamPrices
	streamBids
	streamComplete
)

var (
	skillPool = []string{
		"go", "react", "typescript", "python", "sql", "mongodb", "figma",
		"kubernetes", "aws", "copywriting", "seo", "swift", "kotlin", "rust",
	}
	jobCategories = []string{"backend", "frontend", "fullstack", "devops", "design", "writing", "mobile", "data-science"}
)

// ErrNothingSeeded is returned when a step produced no records to build on.
var ErrNothingSeeded = errors.New("nothing seeded")

// world is what the run created, plus the completion counts it expects
// the leaderboard to show.
type world struct {
	mu sync.Mutex

	admins       []model.User
	freelancers  []model.User
	jobs         []model.Job
	applications []model.Application
	bids         map[string][]model.Bid
	completed    map[string]int
}

type runner struct {
	cfg    *Config
	client *Client
	tag    string
	stats  *Stats
	w      *world
	log    logger.Logger
}

func (r *runner) rng(stream uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(r.cfg.RandSeed, stream<<32|uint64(i))) //nolint:gosec // demo data
}

// Run seeds the instance at cfg.BaseURL and verifies the leaderboard.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		cfg:    cfg,
		client: NewClient(cfg.BaseURL, cfg.Timeout),
		tag:    uuid.NewString()[:8],
		stats:  &Stats{StartTime: time.Now()},
		w:      &world{bids: map[string][]model.Bid{}, completed: map[string]int{}},
		log:    logger.Named("seed"),
	}

	r.log.Info(ctx, "starting bidhub seed",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("runTag", r.tag),
		logger.Int("admins", cfg.Admins),
		logger.Int("freelancers", cfg.Freelancers),
		logger.Int("jobs", cfg.Jobs),
		logger.Int("workers", cfg.Workers),
	)

	if err := r.client.Health(ctx); err != nil {
		return r.stats, fmt.Errorf("service health check failed: %w", err)
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"register users", r.registerUsers},
		{"post jobs", r.postJobs},
		{"submit applications", r.submitApplications},
		{"place bids", r.placeBids},
		{"settle applications", r.settle},
		{"verify leaderboard", r.verify},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return r.stats, err
		}
		started := time.Now()
		if err := step.fn(ctx); err != nil {
			return r.stats, fmt.Errorf("%s: %w", step.name, err)
		}
		r.log.Info(ctx, "step done", logger.String("step", step.name), logger.Duration("took", time.Since(started)))
	}

	r.stats.Duration = time.Since(r.stats.StartTime)
	r.logStats(ctx)
	return r.stats, nil
}

func (r *runner) onErr(what string) func(int, error) {
	return func(i int, err error) {
		if r.cfg.Verbose {
			r.log.Warn(context.Background(), what+" failed", logger.Int("index", i), logger.Error(err))
		}
	}
}

func (r *runner) registerUsers(ctx context.Context) error {
	total := r.cfg.Admins + r.cfg.Freelancers
	users := make([]model.User, total)

	failed := forEach(ctx, r.cfg.Workers, total, func(ctx context.Context, i int) error {
		role, n := model.RoleAdmin, i
		var skills []string
		if i >= r.cfg.Admins {
			role, n = model.RoleFreelancer, i-r.cfg.Admins
			skills = pickSkills(r.rng(streamSkills, n), 3)
		}
		body := map[string]any{
			"name":     fmt.Sprintf("Seed %s %d", role, n),
			"email":    fmt.Sprintf("%s-%d-%s@seed.bidhub.dev", role, n, r.tag),
			"password": seedPassword,
			"role":     role,
			"skills":   skills,
			"bio":      "Generated by the bidhub seeder.",
		}
		return r.client.Do(ctx, http.MethodPost, "/auth/register", body, "user", &users[i])
	}, r.onErr("register"))
	r.stats.Failed += failed

	for _, u := range users {
		switch {
		case u.ID == "":
		case u.Role == model.RoleAdmin:
			r.w.admins = append(r.w.admins, u)
		default:
			r.w.freelancers = append(r.w.freelancers, u)
			r.w.completed[u.ID] = 0
		}
	}
	r.stats.Users = len(r.w.admins) + len(r.w.freelancers)
	if len(r.w.admins) == 0 || len(r.w.freelancers) == 0 {
		return fmt.Errorf("%w: need at least one admin and one freelancer", ErrNothingSeeded)
	}
	return nil
}

func (r *runner) postJobs(ctx context.Context) error {
	jobs := make([]model.Job, r.cfg.Jobs)

	failed := forEach(ctx, r.cfg.Workers, r.cfg.Jobs, func(ctx context.Context, i int) error {
		rng := r.rng(streamJobs, i)
		admin := r.w.admins[i%len(r.w.admins)]
		category := jobCategories[rng.IntN(len(jobCategories))]
		body := map[string]any{
			"title":           fmt.Sprintf("Seed %s project #%d", category, i),
			"description":     "A generated project used to exercise the marketplace.",
			"category":        category,
			"experienceLevel": []string{"entry", "intermediate", "expert"}[rng.IntN(3)],
			"projectType":     []string{"fixed", "hourly"}[rng.IntN(2)],
			"budget":          fmt.Sprintf("$%d", 500+rng.IntN(20)*100),
			"duration":        fmt.Sprintf("%d weeks", 1+rng.IntN(8)),
			"skills":          pickSkills(rng, 2),
			"adminId":         admin.ID,
			"adminName":       admin.Name,
		}
		return r.client.Do(ctx, http.MethodPost, "/jobs", body, "job", &jobs[i])
	}, r.onErr("post job"))
	r.stats.Failed += failed

	for _, j := range jobs {
		if j.ID != "" {
			r.w.jobs = append(r.w.jobs, j)
		}
	}
	r.stats.Jobs = len(r.w.jobs)
	if len(r.w.jobs) == 0 {
		return fmt.Errorf("%w: no jobs posted", ErrNothingSeeded)
	}
	return nil
}

func (r *runner) submitApplications(ctx context.Context) error {
	per := min(r.cfg.ApplicationsPerJob, len(r.w.freelancers))
	apps := make([]model.Application, len(r.w.jobs)*per)

	failed := forEach(ctx, r.cfg.Workers, len(apps), func(ctx context.Context, i int) error {
		job := r.w.jobs[i/per]
		fl := r.w.freelancers[(i/per+i%per)%len(r.w.freelancers)]
		body := map[string]any{
			"jobId":          job.ID,
			"freelancerId":   fl.ID,
			"freelancerName": fl.Name,
			"proposal":       fmt.Sprintf("%s would like to take on %q.", fl.Name, job.Title),
			"proposedPrice":  price(r.rng(streamPrices, i), 300, 3000),
		}
		return r.client.Do(ctx, http.MethodPost, "/applications", body, "application", &apps[i])
	}, r.onErr("apply"))
	r.stats.Failed += failed

	for _, a := range apps {
		if a.ID != "" {
			r.w.applications = append(r.w.applications, a)
		}
	}
	r.stats.Applications = len(r.w.applications)
	return nil
}

func (r *runner) placeBids(ctx context.Context) error {
	per := min(r.cfg.BidsPerApplication, len(r.w.admins))
	if per == 0 {
		return nil
	}

	failed := forEach(ctx, r.cfg.Workers, len(r.w.applications)*per, func(ctx context.Context, i int) error {
		app := r.w.applications[i/per]
		admin := r.w.admins[(i/per+i%per)%len(r.w.admins)]
		amount := math.Round(app.ProposedPrice*(0.8+r.rng(streamBids, i).Float64()*0.4)*100) / 100
		body := map[string]any{
			"applicationId": app.ID,
			"freelancerId":  app.FreelancerID,
			"adminId":       admin.ID,
			"adminName":     admin.Name,
			"amount":        amount,
		}
		var bid model.Bid
		if err := r.client.Do(ctx, http.MethodPost, "/bids", body, "bid", &bid); err != nil {
			return err
		}
		r.w.mu.Lock()
		r.w.bids[app.ID] = append(r.w.bids[app.ID], bid)
		r.stats.Bids++
		r.w.mu.Unlock()
		return nil
	}, r.onErr("bid"))
	r.stats.Failed += failed
	return nil
}

// settle accepts the best bid of each application, or the application
// itself when nobody bid, then completes a share of the accepted work.
func (r *runner) settle(ctx context.Context) error {
	failed := forEach(ctx, r.cfg.Workers, len(r.w.applications), func(ctx context.Context, i int) error {
		app := r.w.applications[i]

		r.w.mu.Lock()
		best, ok := highestBid(r.w.bids[app.ID])
		r.w.mu.Unlock()

		var err error
		if ok {
			err = r.client.Do(ctx, http.MethodPatch, "/bids/"+best.ID+"/accept", nil, "", nil)
		} else {
			err = r.client.Do(ctx, http.MethodPatch, "/applications/"+app.ID+"/accept", nil, "", nil)
		}
		if err != nil {
			return err
		}
		r.w.mu.Lock()
		r.stats.Accepted++
		r.w.mu.Unlock()

		if r.rng(streamComplete, i).Float64() >= r.cfg.CompleteRatio {
			return nil
		}
		if err := r.client.Do(ctx, http.MethodPatch, "/applications/"+app.ID+"/complete", nil, "", nil); err != nil {
			return err
		}
		r.w.mu.Lock()
		r.w.completed[app.FreelancerID]++
		r.stats.Completed++
		r.w.mu.Unlock()
		return nil
	}, r.onErr("settle"))
	r.stats.Failed += failed
	return nil
}

func (r *runner) logStats(ctx context.Context) {
	r.log.Info(ctx, "final statistics",
		logger.Int("users", r.stats.Users),
		logger.Int("jobs", r.stats.Jobs),
		logger.Int("applications", r.stats.Applications),
		logger.Int("bids", r.stats.Bids),
		logger.Int("accepted", r.stats.Accepted),
		logger.Int("completed", r.stats.Completed),
		logger.Int("failed", r.stats.Failed),
		logger.Int("rankChecked", r.stats.RankedChecked),
		logger.Duration("duration", r.stats.Duration),
	)
}

func pickSkills(rng *rand.Rand, n int) []string {
	idx := rng.Perm(len(skillPool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = skillPool[j]
	}
	return out
}

// price returns a whole-dollar amount in [lo, hi).
func price(rng *rand.Rand, lo, hi int) float64 {
	return float64(lo + rng.IntN(hi-lo))
}

func highestBid(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}
	best := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > best.Amount {
			best = b
		}
	}
	return best, true
}
