package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifetrack-api/internal/application"
	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/domain/repository"
)

type mockItemRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Item
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[string]*entity.Item)}
}

func (m *mockItemRepo) Create(_ context.Context, it *entity.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it.ID = primitive.NewObjectID()
	it.CreatedAt = time.Now().UTC()
	it.UpdatedAt = it.CreatedAt
	cp := *it
	m.items[it.ID.Hex()] = &cp
	return nil
}

func (m *mockItemRepo) ListByOwner(_ context.Context, owner string) ([]entity.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Item, 0)
	for _, it := range m.items {
		if it.Owner.Hex() == owner {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *mockItemRepo) GetByID(_ context.Context, owner, id string) (*entity.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.Owner.Hex() != owner {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *mockItemRepo) Update(_ context.Context, it *entity.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[it.ID.Hex()]
	if !ok || stored.Owner != it.Owner {
		return repository.ErrNotFound
	}
	it.UpdatedAt = time.Now().UTC()
	cp := *it
	m.items[it.ID.Hex()] = &cp
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.Owner.Hex() != owner {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newItemService(repo repository.ItemRepository) *application.ItemService {
	return application.NewItemService(repo, testLogger())
}

func TestItemCreateAppliesDefaults(t *testing.T) {
	svc := newItemService(newMockItemRepo())
	owner := primitive.NewObjectID().Hex()

	it, err := svc.Create(context.Background(), owner, application.ItemInput{Title: "Electricity"})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryBill, it.Category)
	assert.Equal(t, entity.StatusOpen, it.Status)
	assert.False(t, it.ID.IsZero())
}

func TestItemListIsOwnerScoped(t *testing.T) {
	svc := newItemService(newMockItemRepo())
	ctx := context.Background()
	ownerA := primitive.NewObjectID().Hex()
	ownerB := primitive.NewObjectID().Hex()

	_, err := svc.Create(ctx, ownerA, application.ItemInput{Title: "Rent"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ownerB, application.ItemInput{Title: "Insurance"})
	require.NoError(t, err)

	items, err := svc.List(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rent", items[0].Title)

	items, err = svc.List(ctx, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemUpdateKeepsUnsetFields(t *testing.T) {
	svc := newItemService(newMockItemRepo())
	ctx := context.Background()
	owner := primitive.NewObjectID().Hex()

	it, err := svc.Create(ctx, owner, application.ItemInput{
		Title: "Car warranty", Category: entity.CategoryWarranty, Amount: 120, Notes: "expires soon",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, it.ID.Hex(), application.ItemInput{Status: entity.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, updated.Status)
	assert.Equal(t, "Car warranty", updated.Title)
	assert.Equal(t, entity.CategoryWarranty, updated.Category)
	assert.Equal(t, float64(120), updated.Amount)
	assert.Equal(t, "expires soon", updated.Notes)
}

func TestItemCrossOwnerAccessBehavesLikeMiss(t *testing.T) {
	svc := newItemService(newMockItemRepo())
	ctx := context.Background()
	owner := primitive.NewObjectID().Hex()
	stranger := primitive.NewObjectID().Hex()

	it, err := svc.Create(ctx, owner, application.ItemInput{Title: "Rent"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger, it.ID.Hex(), application.ItemInput{Status: entity.StatusPaid})
	assert.ErrorIs(t, err, application.ErrItemNotFound)

	err = svc.Delete(ctx, stranger, it.ID.Hex())
	assert.ErrorIs(t, err, application.ErrItemNotFound)

	// Owner still sees the untouched item.
	got, err := svc.Update(ctx, owner, it.ID.Hex(), application.ItemInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOpen, got.Status)
}

func TestItemDeleteUnknownID(t *testing.T) {
	svc := newItemService(newMockItemRepo())
	owner := primitive.NewObjectID().Hex()

	err := svc.Delete(context.Background(), owner, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, application.ErrItemNotFound)
}
