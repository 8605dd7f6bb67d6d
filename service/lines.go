package service

import (
	"context"

	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/validation"
)

type LineInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Product string `json:"product" validate:"required,max=255"`
}

type LinePatch struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Product *string `json:"product" validate:"omitempty,min=1,max=255"`
}

// Lines resolves production lines by owner and name.
type Lines struct {
	store *repository.Store
}

func NewLines(store *repository.Store) *Lines {
	return &Lines{store: store}
}

// Resolve returns the owner's line called in.Name, creating it when absent.
// An existing line keeps its product.
func (l *Lines) Resolve(ctx context.Context, ownerID uint, in LineInput) (models.ProductionLine, bool, error) {
	if err := validation.ValidateStruct(&in); err != nil {
		return models.ProductionLine{}, false, err
	}
	return resolveLine(ctx, l.store, ownerID, in)
}

func resolveLine(ctx context.Context, store *repository.Store, ownerID uint, in LineInput) (models.ProductionLine, bool, error) {
	return store.GetOrCreateProductionLine(ctx, models.ProductionLine{
		UserID:  ownerID,
		Name:    in.Name,
		Product: in.Product,
	})
}

// Update applies the set fields of patch. Renaming onto another line's name
// is a conflict.
func (l *Lines) Update(ctx context.Context, ownerID, id uint, patch LinePatch) (models.ProductionLine, error) {
	if err := validation.ValidateStruct(&patch); err != nil {
		return models.ProductionLine{}, err
	}

	line, err := l.store.GetProductionLine(ctx, ownerID, id)
	if err != nil {
		return models.ProductionLine{}, err
	}
	if patch.Name != nil {
		line.Name = *patch.Name
	}
	if patch.Product != nil {
		line.Product = *patch.Product
	}
	if err := l.store.UpdateProductionLine(ctx, &line); err != nil {
		return models.ProductionLine{}, err
	}
	return line, nil
}

// Patch turns a full input into a patch with every field set.
func (in LineInput) Patch() LinePatch {
	return LinePatch{Name: &in.Name, Product: &in.Product}
}
