package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifetrack-api/internal/domain/entity"
	"lifetrack-api/internal/domain/repository"
)

var ErrItemNotFound = errors.New("item not found")

// ItemService implements owner-scoped CRUD over tracked items.
type ItemService struct {
	Items  repository.ItemRepository
	Logger *logrus.Logger
}

func NewItemService(items repository.ItemRepository, logger *logrus.Logger) *ItemService {
	return &ItemService{Items: items, Logger: logger}
}

type ItemInput struct {
	Title    string
	Category string
	Amount   float64
	DueDate  time.Time
	Status   string
	Notes    string
}

func (s *ItemService) Create(ctx context.Context, owner string, in ItemInput) (*entity.Item, error) {
	ownerOID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return nil, ErrItemNotFound
	}
	it := &entity.Item{
		Owner:    ownerOID,
		Title:    in.Title,
		Category: in.Category,
		Amount:   in.Amount,
		DueDate:  in.DueDate,
		Status:   in.Status,
		Notes:    in.Notes,
	}
	if it.Category == "" {
		it.Category = entity.CategoryBill
	}
	if it.Status == "" {
		it.Status = entity.StatusOpen
	}
	if err := s.Items.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ItemService) List(ctx context.Context, owner string) ([]entity.Item, error) {
	items, err := s.Items.ListByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []entity.Item{}, nil
		}
		return nil, err
	}
	return items, nil
}

func (s *ItemService) Update(ctx context.Context, owner, id string, in ItemInput) (*entity.Item, error) {
	it, err := s.Items.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if in.Title != "" {
		it.Title = in.Title
	}
	if in.Category != "" {
		it.Category = in.Category
	}
	if in.Status != "" {
		it.Status = in.Status
	}
	if in.Amount != 0 {
		it.Amount = in.Amount
	}
	if !in.DueDate.IsZero() {
		it.DueDate = in.DueDate
	}
	if in.Notes != "" {
		it.Notes = in.Notes
	}
	if err := s.Items.Update(ctx, it); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return it, nil
}

func (s *ItemService) Delete(ctx context.Context, owner, id string) error {
	if err := s.Items.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}
