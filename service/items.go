package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/validation"
)

type ItemInput struct {
	Index *int64 `json:"index" validate:"required"`
}

// Items manages items directly, outside of ingestion.
type Items struct {
	store *repository.Store
}

func NewItems(store *repository.Store) *Items {
	return &Items{store: store}
}

// Create stores a new item. The index must not be taken.
func (s *Items) Create(ctx context.Context, in ItemInput) (models.Item, error) {
	if err := validation.ValidateStruct(&in); err != nil {
		return models.Item{}, err
	}
	item := models.Item{Index: *in.Index}
	if err := s.store.CreateItem(ctx, &item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Update changes the index of an item. A nil index leaves it unchanged.
func (s *Items) Update(ctx context.Context, id uuid.UUID, index *int64) (models.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if index == nil {
		return item, nil
	}
	item.Index = *index
	if err := s.store.UpdateItem(ctx, &item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}
