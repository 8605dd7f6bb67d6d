package repository

import (
	"context"

	"github.com/krishkalaria12/linegrade/models"
	"gorm.io/gorm"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Create(user).Error, "user")
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := s.conn(ctx).First(&user, id).Error
	return user, translate(err, "user")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.conn(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	return user, translate(err, "user")
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// DeleteUser removes the user with everything they own and returns the
// stored file paths of deleted images.
func (s *Store) DeleteUser(ctx context.Context, id uint) ([]string, error) {
	var paths []string
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.User{}, id).Error; err != nil {
			return err
		}

		cameras := tx.Model(&models.Camera{}).Select("id").Where("user_id = ?", id)
		var err error
		if paths, err = imagePaths(tx, "camera_id IN (?)", cameras); err != nil {
			return err
		}
		if err := tx.Where("camera_id IN (?)", cameras).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Camera{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ProductionLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	return paths, translate(err, "user")
}
