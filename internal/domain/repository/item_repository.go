package repository

import (
	"context"

	"lifetrack-api/internal/domain/entity"
)

// ItemRepository is the persistence port for tracked items. Every operation
// is scoped to an owner; an id belonging to another user behaves like a miss.
type ItemRepository interface {
	Create(ctx context.Context, it *entity.Item) error
	ListByOwner(ctx context.Context, owner string) ([]entity.Item, error)
	GetByID(ctx context.Context, owner, id string) (*entity.Item, error)
	Update(ctx context.Context, it *entity.Item) error
	Delete(ctx context.Context, owner, id string) error
}
