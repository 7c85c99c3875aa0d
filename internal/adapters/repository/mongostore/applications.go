package mongostore

import (
	"context"
	"errors"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateApplication(ctx context.Context, a *model.Application) (err error) {
	defer observe(applicationsColl, "insert")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	doc := newApplicationDoc(a)
	if _, err = s.applications.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	a.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ApplicationByID(ctx context.Context, id string) (_ *model.Application, err error) {
	defer observe(applicationsColl, "find_one")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	var doc applicationDoc
	if err = s.applications.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	a := doc.model()
	return &a, nil
}

func (s *Store) ListApplications(ctx context.Context, f repository.ApplicationFilter) (_ []model.Application, err error) {
	if f.Empty() {
		return []model.Application{}, nil
	}
	defer observe(applicationsColl, "find")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	filter := bson.D{}
	if f.JobID != "" {
		filter = append(filter, bson.E{Key: "jobId", Value: f.JobID})
	}
	if f.FreelancerID != "" {
		filter = append(filter, bson.E{Key: "freelancerId", Value: f.FreelancerID})
	}
	docs, err := findAll[applicationDoc](ctx, s.applications, filter, newestFirst("appliedAt"))
	if err != nil {
		return nil, mapErr(err)
	}
	return models(docs, applicationDoc.model), nil
}

// TransitionApplication is a findOneAndUpdate filtered on the allowed
// source statuses. When nothing matched, a second lookup tells a missing
// application apart from one in the wrong status.
func (s *Store) TransitionApplication(ctx context.Context, id string, change model.ApplicationChange) (_ *model.Application, err error) {
	defer observe(applicationsColl, "transition")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	from := make(bson.A, 0, len(change.From))
	for _, st := range change.From {
		from = append(from, string(st))
	}
	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "status", Value: bson.D{{Key: "$in", Value: from}}},
	}

	set := bson.D{{Key: "status", Value: string(change.To)}}
	if change.AcceptedBidID != "" {
		set = append(set, bson.E{Key: "acceptedBidId", Value: change.AcceptedBidID})
	}
	if change.FinalPrice != nil {
		set = append(set, bson.E{Key: "finalPrice", Value: *change.FinalPrice})
	}
	if change.CompletedAt != nil {
		set = append(set, bson.E{Key: "completedAt", Value: *change.CompletedAt})
	}

	var doc applicationDoc
	err = s.applications.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, afterUpdate()).Decode(&doc)
	if err == nil {
		a := doc.model()
		return &a, nil
	}
	if err = mapErr(err); !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if exists, lookupErr := s.applicationExists(ctx, oid); lookupErr != nil {
		return nil, lookupErr
	} else if exists {
		return nil, repository.ErrConflict
	}
	return nil, repository.ErrNotFound
}

func (s *Store) applicationExists(ctx context.Context, oid primitive.ObjectID) (bool, error) {
	var probe struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.applications.FindOne(ctx, bson.D{{Key: "_id", Value: oid}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Decode(&probe)
	switch err = mapErr(err); {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
