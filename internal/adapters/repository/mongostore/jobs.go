package mongostore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateJob(ctx context.Context, j *model.Job) (err error) {
	defer observe(jobsColl, "insert")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	doc := newJobDoc(j)
	if _, err = s.jobs.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	j.ID = doc.ID.Hex()
	return nil
}

func (s *Store) JobByID(ctx context.Context, id string) (_ *model.Job, err error) {
	defer observe(jobsColl, "find_one")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	var doc jobDoc
	if err = s.jobs.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	j := doc.model()
	return &j, nil
}

// jobFilter builds the query for ListJobs. The free-text query is a
// case-insensitive substring match on title, description and skills.
func jobFilter(f model.JobFilter) bson.D {
	filter := bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: string(model.JobDeleted)}}}}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	if f.AdminID != "" {
		filter = append(filter, bson.E{Key: "adminId", Value: f.AdminID})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "skills", Value: re}},
		}})
	}
	return filter
}

func (s *Store) ListJobs(ctx context.Context, f model.JobFilter) (_ []model.Job, err error) {
	defer observe(jobsColl, "find")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	docs, err := findAll[jobDoc](ctx, s.jobs, jobFilter(f), newestFirst("createdAt"))
	if err != nil {
		return nil, mapErr(err)
	}
	return models(docs, jobDoc.model), nil
}

func (s *Store) SoftDeleteJob(ctx context.Context, id string, at time.Time) (_ *model.Job, err error) {
	defer observe(jobsColl, "soft_delete")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: string(model.JobDeleted)}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(model.JobDeleted)},
		{Key: "deletedAt", Value: at},
	}}}

	var doc jobDoc
	if err = s.jobs.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	j := doc.model()
	return &j, nil
}

func (s *Store) IncrementApplications(ctx context.Context, jobID string) (err error) {
	defer observe(jobsColl, "increment")(&err)
	oid, ok := objectID(jobID)
	if !ok {
		return repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	res, err := s.jobs.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "applicationsCount", Value: 1}}}},
	)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
