// Package memstore is an in-process implementation of repository.Store for
// development and tests. It is chosen explicitly through configuration.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
)

// rec keeps insertion order so equal timestamps still sort newest first.
type rec[T any] struct {
	v   T
	seq uint64
}

// Store holds every collection behind one mutex.
type Store struct {
	mu     sync.RWMutex
	seq    uint64
	users  map[string]*rec[model.User]
	emails map[string]string // email -> user id
	jobs   map[string]*rec[model.Job]
	apps   map[string]*rec[model.Application]
	bids   map[string]*rec[model.Bid]
	notes  map[string]*rec[model.Notification]
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:  make(map[string]*rec[model.User]),
		emails: make(map[string]string),
		jobs:   make(map[string]*rec[model.Job]),
		apps:   make(map[string]*rec[model.Application]),
		bids:   make(map[string]*rec[model.Bid]),
		notes:  make(map[string]*rec[model.Notification]),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close(context.Context) error { return nil }

// next assumes the write lock is held.
func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// newest sorts records by ts desc, then insertion order desc, and copies them out.
func newest[T any](rs []*rec[T], ts func(*T) time.Time, clone func(T) T) []T {
	sort.Slice(rs, func(i, j int) bool {
		ti, tj := ts(&rs[i].v), ts(&rs[j].v)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rs[i].seq > rs[j].seq
	})
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		out = append(out, clone(r.v))
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneUser(u model.User) model.User {
	u.Skills = cloneStrings(u.Skills)
	return u
}

func cloneJob(j model.Job) model.Job {
	j.Skills = cloneStrings(j.Skills)
	j.Deadline = cloneTime(j.Deadline)
	j.DeletedAt = cloneTime(j.DeletedAt)
	return j
}

func cloneApplication(a model.Application) model.Application {
	if a.FinalPrice != nil {
		p := *a.FinalPrice
		a.FinalPrice = &p
	}
	a.CompletedAt = cloneTime(a.CompletedAt)
	return a
}

func cloneBid(b model.Bid) model.Bid { return b }

func cloneNotification(n model.Notification) model.Notification { return n }

func ptr[T any](v T) *T { return &v }

// Users

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[u.Email]; taken {
		return repository.ErrDuplicate
	}
	u.ID = uuid.NewString()
	s.users[u.ID] = &rec[model.User]{v: cloneUser(*u), seq: s.next()}
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ptr(cloneUser(r.v)), nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.emails[email]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.UserByID(ctx, id)
}

func (s *Store) UpdateProfile(_ context.Context, id string, upd model.ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Name != nil {
		r.v.Name = *upd.Name
	}
	if upd.Bio != nil {
		r.v.Bio = *upd.Bio
	}
	if upd.Skills != nil {
		r.v.Skills = cloneStrings(upd.Skills)
	}
	return ptr(cloneUser(r.v)), nil
}

func (s *Store) IncrementCompleted(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.v.CompletedProjects++
	return ptr(cloneUser(r.v)), nil
}

func (s *Store) ListUsersByRole(_ context.Context, role model.Role) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs := make([]*rec[model.User], 0)
	for _, r := range s.users {
		if r.v.Role == role {
			rs = append(rs, r)
		}
	}
	return newest(rs, func(u *model.User) time.Time { return u.CreatedAt }, cloneUser), nil
}

// Jobs

func (s *Store) CreateJob(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j.ID = uuid.NewString()
	s.jobs[j.ID] = &rec[model.Job]{v: cloneJob(*j), seq: s.next()}
	return nil
}

func (s *Store) JobByID(_ context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ptr(cloneJob(r.v)), nil
}

func (s *Store) ListJobs(_ context.Context, f model.JobFilter) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs := make([]*rec[model.Job], 0)
	for _, r := range s.jobs {
		if f.Matches(&r.v) {
			rs = append(rs, r)
		}
	}
	return newest(rs, func(j *model.Job) time.Time { return j.CreatedAt }, cloneJob), nil
}

func (s *Store) SoftDeleteJob(_ context.Context, id string, at time.Time) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[id]
	if !ok || r.v.Status == model.JobDeleted {
		return nil, repository.ErrNotFound
	}
	r.v.Status = model.JobDeleted
	r.v.DeletedAt = ptr(at)
	return ptr(cloneJob(r.v)), nil
}

func (s *Store) IncrementApplications(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[jobID]
	if !ok {
		return repository.ErrNotFound
	}
	r.v.ApplicationsCount++
	return nil
}

// Applications

func (s *Store) CreateApplication(_ context.Context, a *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.NewString()
	s.apps[a.ID] = &rec[model.Application]{v: cloneApplication(*a), seq: s.next()}
	return nil
}

func (s *Store) ApplicationByID(_ context.Context, id string) (*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ptr(cloneApplication(r.v)), nil
}

func (s *Store) ListApplications(_ context.Context, f repository.ApplicationFilter) ([]model.Application, error) {
	if f.Empty() {
		return []model.Application{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rs := make([]*rec[model.Application], 0)
	for _, r := range s.apps {
		if f.JobID != "" && r.v.JobID != f.JobID {
			continue
		}
		if f.FreelancerID != "" && r.v.FreelancerID != f.FreelancerID {
			continue
		}
		rs = append(rs, r)
	}
	return newest(rs, func(a *model.Application) time.Time { return a.AppliedAt }, cloneApplication), nil
}

func (s *Store) TransitionApplication(_ context.Context, id string, change model.ApplicationChange) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !change.Allows(r.v.Status) {
		return nil, repository.ErrConflict
	}
	change.Apply(&r.v)
	return ptr(cloneApplication(r.v)), nil
}

// Bids

func (s *Store) CreateBid(_ context.Context, b *model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = uuid.NewString()
	s.bids[b.ID] = &rec[model.Bid]{v: *b, seq: s.next()}
	return nil
}

func (s *Store) BidByID(_ context.Context, id string) (*model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.bids[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ptr(r.v), nil
}

func (s *Store) ListBids(_ context.Context, f repository.BidFilter) ([]model.Bid, error) {
	if f.Empty() {
		return []model.Bid{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rs := make([]*rec[model.Bid], 0)
	for _, r := range s.bids {
		if f.ApplicationID != "" && r.v.ApplicationID != f.ApplicationID {
			continue
		}
		if f.AdminID != "" && r.v.AdminID != f.AdminID {
			continue
		}
		rs = append(rs, r)
	}
	return newest(rs, func(b *model.Bid) time.Time { return b.CreatedAt }, cloneBid), nil
}

func (s *Store) SetBidStatus(_ context.Context, id string, status model.BidStatus) (*model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.bids[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.v.Status = status
	return ptr(r.v), nil
}

func (s *Store) OutbidOthers(_ context.Context, applicationID, keepID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, r := range s.bids {
		if r.v.ApplicationID == applicationID && id != keepID {
			r.v.Status = model.BidOutbid
			n++
		}
	}
	return n, nil
}

// Notifications

func (s *Store) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	s.notes[n.ID] = &rec[model.Notification]{v: *n, seq: s.next()}
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs := make([]*rec[model.Notification], 0)
	for _, r := range s.notes {
		if r.v.UserID != userID || (unreadOnly && r.v.Read) {
			continue
		}
		rs = append(rs, r)
	}
	return newest(rs, func(n *model.Notification) time.Time { return n.CreatedAt }, cloneNotification), nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.v.Read = true
	return ptr(r.v), nil
}
