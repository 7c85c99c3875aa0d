package mongostore

import (
	"context"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) (err error) {
	defer observe(notificationsColl, "insert")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	doc := newNotificationDoc(n)
	if _, err = s.notifications.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	n.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) (_ []model.Notification, err error) {
	defer observe(notificationsColl, "find")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	filter := bson.D{{Key: "userId", Value: userID}}
	if unreadOnly {
		filter = append(filter, bson.E{Key: "read", Value: false})
	}
	docs, err := findAll[notificationDoc](ctx, s.notifications, filter, newestFirst("createdAt"))
	if err != nil {
		return nil, mapErr(err)
	}
	return models(docs, notificationDoc.model), nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) (_ *model.Notification, err error) {
	defer observe(notificationsColl, "update")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	var doc notificationDoc
	err = s.notifications.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}},
		afterUpdate(),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(err)
	}
	n := doc.model()
	return &n, nil
}
