package mongostore

import (
	"context"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) CreateBid(ctx context.Context, b *model.Bid) (err error) {
	defer observe(bidsColl, "insert")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	doc := newBidDoc(b)
	if _, err = s.bids.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (s *Store) BidByID(ctx context.Context, id string) (_ *model.Bid, err error) {
	defer observe(bidsColl, "find_one")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	var doc bidDoc
	if err = s.bids.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	b := doc.model()
	return &b, nil
}

func (s *Store) ListBids(ctx context.Context, f repository.BidFilter) (_ []model.Bid, err error) {
	if f.Empty() {
		return []model.Bid{}, nil
	}
	defer observe(bidsColl, "find")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	filter := bson.D{}
	if f.ApplicationID != "" {
		filter = append(filter, bson.E{Key: "applicationId", Value: f.ApplicationID})
	}
	if f.AdminID != "" {
		filter = append(filter, bson.E{Key: "adminId", Value: f.AdminID})
	}
	docs, err := findAll[bidDoc](ctx, s.bids, filter, newestFirst("createdAt"))
	if err != nil {
		return nil, mapErr(err)
	}
	return models(docs, bidDoc.model), nil
}

func (s *Store) SetBidStatus(ctx context.Context, id string, status model.BidStatus) (_ *model.Bid, err error) {
	defer observe(bidsColl, "update")(&err)
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	var doc bidDoc
	err = s.bids.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(status)}}}},
		afterUpdate(),
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(err)
	}
	b := doc.model()
	return &b, nil
}

func (s *Store) OutbidOthers(ctx context.Context, applicationID, keepID string) (_ int64, err error) {
	defer observe(bidsColl, "update_many")(&err)
	ctx, cancel := s.opctx(ctx)
	defer cancel()

	filter := bson.D{{Key: "applicationId", Value: applicationID}}
	if oid, ok := objectID(keepID); ok {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: oid}}})
	}
	res, err := s.bids.UpdateMany(ctx, filter,
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(model.BidOutbid)}}}})
	if err != nil {
		return 0, mapErr(err)
	}
	return res.ModifiedCount, nil
}
