package repository

import (
	"context"

	"github.com/krishkalaria12/linegrade/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func findLineByName(db *gorm.DB, ownerID uint, name string) (models.ProductionLine, error) {
	var line models.ProductionLine
	err := db.Where("user_id = ? AND name = ?", ownerID, name).First(&line).Error
	return line, err
}

// GetOrCreateProductionLine returns the owner's line with line.Name, creating
// it from line when absent. Other fields of an existing line are left as is.
func (s *Store) GetOrCreateProductionLine(ctx context.Context, line models.ProductionLine) (models.ProductionLine, bool, error) {
	got, created, err := getOrCreate(s.conn(ctx),
		func(db *gorm.DB) (models.ProductionLine, error) {
			return findLineByName(db, line.UserID, line.Name)
		},
		func(db *gorm.DB) (models.ProductionLine, error) {
			fresh := models.ProductionLine{UserID: line.UserID, Name: line.Name, Product: line.Product}
			err := db.Omit(clause.Associations).Create(&fresh).Error
			return fresh, err
		},
	)
	return got, created, translate(err, "production line")
}

func (s *Store) GetProductionLine(ctx context.Context, ownerID, id uint) (models.ProductionLine, error) {
	var line models.ProductionLine
	err := s.conn(ctx).Where("user_id = ?", ownerID).First(&line, id).Error
	return line, translate(err, "production line")
}

func (s *Store) ListProductionLines(ctx context.Context, ownerID uint, page Page) ([]models.ProductionLine, error) {
	lines := make([]models.ProductionLine, 0)
	q := s.conn(ctx).Where("user_id = ?", ownerID).Order("id")
	err := page.apply(q).Find(&lines).Error
	return lines, err
}

func (s *Store) UpdateProductionLine(ctx context.Context, line *models.ProductionLine) error {
	err := s.conn(ctx).Omit(clause.Associations).Save(line).Error
	return translate(err, "production line")
}

// DeleteProductionLine removes the line, its cameras and their images.
func (s *Store) DeleteProductionLine(ctx context.Context, ownerID, id uint) ([]string, error) {
	var paths []string
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[models.ProductionLine](tx, ownerID, id); err != nil {
			return err
		}

		cameras := tx.Model(&models.Camera{}).Select("id").Where("production_line_id = ?", id)
		var err error
		if paths, err = imagePaths(tx, "camera_id IN (?)", cameras); err != nil {
			return err
		}
		if err := tx.Where("camera_id IN (?)", cameras).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("production_line_id = ?", id).Delete(&models.Camera{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProductionLine{}, id).Error
	})
	return paths, translate(err, "production line")
}

func findOwned[T any](tx *gorm.DB, ownerID, id uint) (T, error) {
	var row T
	err := tx.Where("user_id = ?", ownerID).First(&row, id).Error
	return row, err
}
