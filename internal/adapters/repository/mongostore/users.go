package mongostore

import (
	"context"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) (err error) {
	defer observe(usersColl, "insert")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	doc := newUserDoc(u)
	if _, err = s.users.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (_ *model.User, err error) {
	defer observe(usersColl, "find_one")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (_ *model.User, err error) {
	defer observe(usersColl, "find_one")(&err)
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (*model.User, error) {
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	u := doc.model()
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) (_ *model.User, err error) {
	defer observe(usersColl, "update")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}

	set := bson.D{}
	if upd.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *upd.Name})
	}
	if upd.Bio != nil {
		set = append(set, bson.E{Key: "bio", Value: *upd.Bio})
	}
	if upd.Skills != nil {
		set = append(set, bson.E{Key: "skills", Value: upd.Skills})
	}
	if len(set) == 0 {
		return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}})
	}
	return s.updateUser(ctx, oid, bson.D{{Key: "$set", Value: set}})
}

func (s *Store) IncrementCompleted(ctx context.Context, id string) (_ *model.User, err error) {
	defer observe(usersColl, "increment")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.updateUser(ctx, oid, bson.D{{Key: "$inc", Value: bson.D{{Key: "completedProjects", Value: 1}}}})
}

func (s *Store) updateUser(ctx context.Context, oid any, update bson.D) (*model.User, error) {
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, afterUpdate()).Decode(&doc)
	if err != nil {
		return nil, mapErr(err)
	}
	u := doc.model()
	return &u, nil
}

func (s *Store) ListUsersByRole(ctx context.Context, role model.Role) (_ []model.User, err error) {
	defer observe(usersColl, "find")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	docs, err := findAll[userDoc](ctx, s.users, bson.D{{Key: "role", Value: string(role)}},
		options.Find().SetProjection(bson.D{{Key: "passwordHash", Value: 0}}))
	if err != nil {
		return nil, mapErr(err)
	}
	return models(docs, userDoc.model), nil
}
