package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/domain/repository"
)

type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{col: db.Collection("items")}
}

func (r *ItemRepository) Create(ctx context.Context, it *entity.Item) error {
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, it)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		it.ID = oid
	}
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, owner string) ([]entity.Item, error) {
	oid, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	cur, err := r.col.Find(ctx, bson.M{"owner": oid})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	items := []entity.Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, owner, id string) (*entity.Item, error) {
	filter, err := ownerScope(owner, id)
	if err != nil {
		return nil, err
	}
	it := &entity.Item{}
	if err := r.col.FindOne(ctx, filter).Decode(it); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (r *ItemRepository) Update(ctx context.Context, it *entity.Item) error {
	it.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": it.ID, "owner": it.Owner}, it)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, owner, id string) error {
	filter, err := ownerScope(owner, id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ownerScope builds a filter matching an item only within its owner's scope,
// so another user's id behaves like a miss.
func ownerScope(owner, id string) (bson.M, error) {
	ownerOID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	itemOID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return bson.M{"_id": itemOID, "owner": ownerOID}, nil
}

var _ repository.ItemRepository = (*ItemRepository)(nil)
