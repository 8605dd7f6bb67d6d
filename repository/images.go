package repository

import (
	"context"

	"github.com/krishkalaria12/linegrade/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateImage inserts the image row. A second image for the same item and
// camera fails with a Conflict error.
func (s *Store) CreateImage(ctx context.Context, image *models.Image) error {
	err := s.conn(ctx).Omit(clause.Associations).Create(image).Error
	if IsUniqueViolation(err) {
		return translate(err, "image for this item and camera")
	}
	return translate(err, "image")
}

func (s *Store) ownedImages(ctx context.Context, ownerID uint) *gorm.DB {
	return s.conn(ctx).
		Model(&models.Image{}).
		Select("images.*").
		Joins("JOIN cameras ON cameras.id = images.camera_id").
		Where("cameras.user_id = ?", ownerID).
		Preload("Item").
		Preload("Camera.ProductionLine")
}

// LoadImage reloads an image with its item, camera and production line.
func (s *Store) LoadImage(ctx context.Context, id uint) (models.Image, error) {
	var image models.Image
	err := s.conn(ctx).Preload("Item").Preload("Camera.ProductionLine").First(&image, id).Error
	return image, translate(err, "image")
}

// GetImage returns an image captured by one of the owner's cameras.
func (s *Store) GetImage(ctx context.Context, ownerID, id uint) (models.Image, error) {
	var image models.Image
	err := s.ownedImages(ctx, ownerID).Where("images.id = ?", id).First(&image).Error
	return image, translate(err, "image")
}

// ListImages returns the owner's images, newest capture first.
func (s *Store) ListImages(ctx context.Context, ownerID uint, page Page) ([]models.Image, error) {
	images := make([]models.Image, 0)
	q := s.ownedImages(ctx, ownerID).Order("images.capture_time DESC").Order("images.id DESC")
	err := page.apply(q).Find(&images).Error
	return images, err
}

func (s *Store) UpdateImage(ctx context.Context, image *models.Image) error {
	err := s.conn(ctx).Model(image).Omit(clause.Associations).Updates(map[string]any{
		"grade":        image.Grade,
		"capture_time": image.CaptureTime,
	}).Error
	return translate(err, "image")
}

func (s *Store) DeleteImage(ctx context.Context, ownerID, id uint) (models.Image, error) {
	var image models.Image
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		owned := &Store{db: tx}
		var err error
		if image, err = owned.GetImage(ctx, ownerID, id); err != nil {
			return err
		}
		return tx.Delete(&models.Image{}, id).Error
	})
	return image, translate(err, "image")
}

func (s *Store) CountImages(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Image{}).Count(&n).Error
	return n, err
}

func (s *Store) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Item{}).Count(&n).Error
	return n, err
}
