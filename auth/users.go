package auth

import (
	"context"
	"fmt"

	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/validation"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Register creates an active, non-staff user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	return s.createUser(ctx, in, false)
}

// CreateSuperuser creates an active user with staff and superuser flags.
func (s *Service) CreateSuperuser(ctx context.Context, in RegisterInput) (models.User, error) {
	return s.createUser(ctx, in, true)
}

func (s *Service) createUser(ctx context.Context, in RegisterInput, superuser bool) (models.User, error) {
	in.Email = models.NormalizeEmail(in.Email)
	if err := validation.ValidateStruct(&in); err != nil {
		return models.User{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:       in.Email,
		Name:        in.Name,
		Password:    hash,
		IsActive:    true,
		IsStaff:     superuser,
		IsSuperuser: superuser,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
