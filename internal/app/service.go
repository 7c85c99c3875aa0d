// Package service implements the marketplace operations behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/bidhub/internal/adapters/mq/queue"
	workerpool "github.com/okian/bidhub/internal/adapters/mq/worker"
	"github.com/okian/bidhub/internal/adapters/ranking"
	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/dedupe"
	"github.com/okian/bidhub/internal/domain/model"
	"github.com/okian/bidhub/internal/domain/notify"
	"github.com/okian/bidhub/internal/domain/password"
	"github.com/okian/bidhub/pkg/logger"
	"github.com/okian/bidhub/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 10_000
	defaultDedupeSize   = 100_000
	defaultLimit        = 10
	defaultMaxLimit     = 100
	defaultRefreshEvery = time.Minute
)

// Service implements the API dependencies for the marketplace.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	hasher   *password.Hasher
	ranks    *ranking.Index
	deduper  dedupe.Deduper
	queue    *eventqueue.InMemoryQueue
	pool     *workerpool.Pool
	handler  workerpool.Handler
	passHash int

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	defaultLimit int
	maxLimit     int
	refreshEvery time.Duration
	now          func() time.Time

	// State
	started  bool
	stopCh   chan struct{}
	loopDone chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.passHash = cost
	}
}

// WithLeaderboardLimits sets the default and maximum leaderboard page size.
func WithLeaderboardLimits(def, maxLimit int) Option {
	return func(s *Service) {
		if def > 0 && maxLimit >= def {
			s.defaultLimit = def
			s.maxLimit = maxLimit
		}
	}
}

// WithRankingRefresh sets how often the leaderboard is rebuilt from the
// store. Zero disables the periodic rebuild.
func WithRankingRefresh(every time.Duration) Option {
	return func(s *Service) {
		if every >= 0 {
			s.refreshEvery = every
		}
	}
}

// WithHandler replaces the notification composer the workers call.
func WithHandler(h workerpool.Handler) Option {
	return func(s *Service) {
		if h != nil {
			s.handler = h
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		ranks:        ranking.New(),
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		defaultLimit: defaultLimit,
		maxLimit:     defaultMaxLimit,
		refreshEvery: defaultRefreshEvery,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.handler == nil {
		s.handler = notify.NewComposer(store, notify.WithClock(s.now))
	}
	s.hasher = password.NewHasher(s.passHash)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start loads the leaderboard and starts the notification workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting marketplace service...")

	if err := s.RebuildRanking(ctx); err != nil {
		return fmt.Errorf("load leaderboard: %w", err)
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.handler)
	// workers outlive the start context; Stop drains them
	s.pool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	s.loopDone = make(chan struct{})
	go s.refreshLoop(context.WithoutCancel(ctx), s.stopCh, s.loopDone)

	s.started = true
	s.logger.Info(ctx, "marketplace service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("rankingRefresh", s.refreshEvery),
	)
	return nil
}

// Stop drains queued events and stops background work.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping marketplace service...")

	close(s.stopCh)
	<-s.loopDone

	err := s.pool.Shutdown(ctx)
	s.started = false
	s.queue = nil
	s.pool = nil

	s.logger.Info(ctx, "marketplace service stopped")
	return err
}

func (s *Service) refreshLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if s.refreshEvery <= 0 {
		return
	}

	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.RebuildRanking(ctx); err != nil {
				metrics.RecordErrorByComponent("ranking", "rebuild")
				s.logger.Warn(ctx, "leaderboard rebuild failed", logger.Error(err))
			}
		}
	}
}

// RebuildRanking replaces the leaderboard with the freelancers in the store.
func (s *Service) RebuildRanking(ctx context.Context) error {
	users, err := s.store.ListUsersByRole(ctx, model.RoleFreelancer)
	if err != nil {
		return err
	}
	members := make([]ranking.Member, 0, len(users))
	for i := range users {
		members = append(members, memberOf(&users[i]))
	}
	s.ranks.Replace(ctx, members)
	return nil
}

func memberOf(u *model.User) ranking.Member {
	return ranking.Member{
		ID:                u.ID,
		Name:              u.Name,
		Skills:            u.Skills,
		CompletedProjects: u.CompletedProjects,
	}
}

// publish hands an event to the workers at most once. Failures are logged
// and counted; the caller's write has already succeeded.
func (s *Service) publish(ctx context.Context, kind model.EventKind, subjectID, actorID string) {
	e := model.NewEvent(kind, subjectID, actorID, s.now().UTC())

	if s.deduper.SeenAndRecord(ctx, e.ID) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event skipped", logger.String("eventId", e.ID))
		return
	}

	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	if q == nil {
		s.deduper.Unrecord(ctx, e.ID)
		metrics.RecordEventDropped("not_started")
		s.logger.Warn(ctx, "event dropped, workers not running", logger.String("eventId", e.ID))
		return
	}
	if !q.Enqueue(context.WithoutCancel(ctx), e) {
		s.deduper.Unrecord(ctx, e.ID)
		s.logger.Warn(ctx, "event dropped, queue full or closed",
			logger.String("eventId", e.ID),
			logger.Int("queueLength", q.Len(ctx)),
		)
		return
	}
	metrics.UpdateQueueSize(q.Len(ctx))
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"dedupeSize":        s.dedupeSize,
		"dedupeEntries":     s.deduper.Size(),
		"rankedFreelancers": s.ranks.Count(ctx),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["processedEvents"] = s.pool.Processed()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
