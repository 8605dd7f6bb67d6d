package repository

import (
	"context"

	"github.com/krishkalaria12/linegrade/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateCamera(ctx context.Context, camera *models.Camera) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(camera).Error; err != nil {
		return translate(err, "camera")
	}
	return s.loadLine(ctx, camera)
}

func (s *Store) loadLine(ctx context.Context, camera *models.Camera) error {
	var line models.ProductionLine
	if err := s.conn(ctx).First(&line, camera.ProductionLineID).Error; err != nil {
		return translate(err, "production line")
	}
	camera.ProductionLine = &line
	return nil
}

func (s *Store) GetCamera(ctx context.Context, ownerID, id uint) (models.Camera, error) {
	var camera models.Camera
	err := s.conn(ctx).Preload("ProductionLine").Where("user_id = ?", ownerID).First(&camera, id).Error
	return camera, translate(err, "camera")
}

// FindCameraByIP resolves a camera by exact IP regardless of owner.
func (s *Store) FindCameraByIP(ctx context.Context, ip string) (models.Camera, error) {
	var camera models.Camera
	err := s.conn(ctx).Preload("ProductionLine").Where("ip = ?", ip).First(&camera).Error
	return camera, translate(err, "camera")
}

func (s *Store) ListCameras(ctx context.Context, ownerID uint, page Page) ([]models.Camera, error) {
	cameras := make([]models.Camera, 0)
	q := s.conn(ctx).Preload("ProductionLine").Where("user_id = ?", ownerID).Order("id")
	err := page.apply(q).Find(&cameras).Error
	return cameras, err
}

func (s *Store) UpdateCamera(ctx context.Context, camera *models.Camera) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(camera).Error; err != nil {
		return translate(err, "camera")
	}
	return s.loadLine(ctx, camera)
}

// DeleteCamera removes the camera and its images.
func (s *Store) DeleteCamera(ctx context.Context, ownerID, id uint) ([]string, error) {
	var paths []string
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[models.Camera](tx, ownerID, id); err != nil {
			return err
		}

		var err error
		if paths, err = imagePaths(tx, "camera_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("camera_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Camera{}, id).Error
	})
	return paths, translate(err, "camera")
}
