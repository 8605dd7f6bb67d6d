package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/krishkalaria12/linegrade/models"
	"gorm.io/gorm"
)

func findItemByIndex(db *gorm.DB, index int64) (models.Item, error) {
	var item models.Item
	err := db.Where(map[string]any{"item_index": index}).First(&item).Error
	return item, err
}

// GetOrCreateItem returns the item with index, creating it with a fresh id
// when no item has that index yet.
func (s *Store) GetOrCreateItem(ctx context.Context, index int64) (models.Item, bool, error) {
	item, created, err := getOrCreate(s.conn(ctx),
		func(db *gorm.DB) (models.Item, error) {
			return findItemByIndex(db, index)
		},
		func(db *gorm.DB) (models.Item, error) {
			fresh := models.Item{Index: index}
			err := db.Create(&fresh).Error
			return fresh, err
		},
	)
	return item, created, translate(err, "item")
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	return translate(s.conn(ctx).Create(item).Error, "item")
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (models.Item, error) {
	var item models.Item
	err := s.conn(ctx).Where("id = ?", id).First(&item).Error
	return item, translate(err, "item")
}

func (s *Store) FindItemByIndex(ctx context.Context, index int64) (models.Item, error) {
	item, err := findItemByIndex(s.conn(ctx), index)
	return item, translate(err, "item")
}

func (s *Store) ListItems(ctx context.Context, page Page) ([]models.Item, error) {
	items := make([]models.Item, 0)
	err := page.apply(s.conn(ctx).Order("item_index")).Find(&items).Error
	return items, err
}

func (s *Store) UpdateItem(ctx context.Context, item *models.Item) error {
	return translate(s.conn(ctx).Save(item).Error, "item")
}

// DeleteItem removes the item and its images.
func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) ([]string, error) {
	var paths []string
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&models.Item{}).Error; err != nil {
			return err
		}

		var err error
		if paths, err = imagePaths(tx, "item_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Item{}).Error
	})
	return paths, translate(err, "item")
}
