// Package mongostore implements repository.Store on MongoDB.
//
// Every document is addressed by an ObjectID _id; references between
// collections (jobId, applicationId, ...) are stored as hex strings. An id
// that is not valid hex is reported as not found.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	usersColl         = "users"
	jobsColl          = "jobs"
	applicationsColl  = "applications"
	bidsColl          = "bids"
	notificationsColl = "notifications"
)

const defaultTimeout = 5 * time.Second

// Store is a MongoDB backed repository.Store.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration

	users         *mongo.Collection
	jobs          *mongo.Collection
	applications  *mongo.Collection
	bids          *mongo.Collection
	notifications *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds every store call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wraps an existing database handle. The caller owns the client.
func New(db *mongo.Database, opts ...Option) *Store {
	s := &Store{
		db:            db,
		timeout:       defaultTimeout,
		users:         db.Collection(usersColl),
		jobs:          db.Collection(jobsColl),
		applications:  db.Collection(applicationsColl),
		bids:          db.Collection(bidsColl),
		notifications: db.Collection(notificationsColl),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials uri, checks the deployment and ensures indexes. Close
// disconnects the client.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	s := New(client.Database(database), opts...)
	s.client = client

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the unique email index and the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.jobs, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		{s.applications, mongo.IndexModel{Keys: bson.D{{Key: "jobId", Value: 1}}}},
		{s.applications, mongo.IndexModel{Keys: bson.D{{Key: "freelancerId", Value: 1}}}},
		{s.bids, mongo.IndexModel{Keys: bson.D{{Key: "applicationId", Value: 1}}}},
		{s.bids, mongo.IndexModel{Keys: bson.D{{Key: "adminId", Value: 1}}}},
		{s.notifications, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
	}
	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateOne(ctx, spec.model); err != nil {
			return fmt.Errorf("create index on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opctx(ctx)
	defer cancel()
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) opctx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// observe records latency for one call; unexpected errors are counted too.
//
//	defer observe(jobsColl, "find")(&err)
func observe(coll, op string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		metrics.RecordStoreLatency(coll, op, float64(time.Since(start).Microseconds())/1000)
		if errp == nil || *errp == nil {
			return
		}
		err := *errp
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrDuplicate) {
			return
		}
		metrics.RecordStoreError(coll, op)
	}
}

// mapErr turns driver errors into repository kinds.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	default:
		return err
	}
}

// objectID parses a hex id; ok is false for malformed ids.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// findAll runs a find and decodes every document into T.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}})
}
