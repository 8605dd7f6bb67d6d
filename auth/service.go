package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/krishkalaria12/linegrade/models"
	"github.com/krishkalaria12/linegrade/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer        = "linegrade"
	tokenDuration = 24 * time.Hour
	userIDPrefix  = "local_"
)

// Service issues and checks user tokens on top of go-pkgz/auth.
type Service struct {
	auth  *auth.Service
	store *repository.Store
	now   func() time.Time
}

func NewService(secret, appURL string, store *repository.Store) *Service {
	s := &Service{store: store, now: time.Now}

	s.auth = auth.NewService(auth.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  tokenDuration,
		CookieDuration: 7 * tokenDuration,
		Issuer:         issuer,
		URL:            appURL,
		AvatarStore:    avatar.NewNoOp(),
	})

	return s
}

// ValidateUserCredentials reports whether identity (an email) and password
// match an active user.
func (s *Service) ValidateUserCredentials(ctx context.Context, identity, password string) (bool, error) {
	user, err := s.store.GetUserByEmail(ctx, identity)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return false, nil
		}
		return false, err
	}

	return user.IsActive && CheckPasswordHash(password, user.Password), nil
}

// Login checks the credentials and returns the user with a fresh token.
func (s *Service) Login(ctx context.Context, identity, password string) (models.User, string, error) {
	ok, err := s.ValidateUserCredentials(ctx, identity, password)
	if err != nil {
		return models.User{}, "", err
	}
	if !ok {
		return models.User{}, "", apperror.Unauthenticated("invalid identity or password")
	}

	user, err := s.store.GetUserByEmail(ctx, identity)
	if err != nil {
		return models.User{}, "", err
	}

	tokenStr, err := s.IssueToken(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, tokenStr, nil
}

func (s *Service) IssueToken(user models.User) (string, error) {
	now := s.now()
	claims := token.Claims{
		User: &token.User{
			ID:    userIDPrefix + strconv.FormatUint(uint64(user.ID), 10),
			Name:  user.Name,
			Email: user.Email,
			Attributes: map[string]interface{}{
				"is_staff": user.IsStaff,
			},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.auth.TokenService().Issuer,
			Audience:  []string{issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := s.auth.TokenService().Token(claims)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenStr, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (models.User, error) {
	if tokenStr == "" {
		return models.User{}, apperror.Unauthenticated("authentication credentials were not provided")
	}

	claims, err := s.auth.TokenService().Parse(tokenStr)
	if err != nil || claims.User == nil {
		return models.User{}, apperror.Wrap(apperror.Authentication, "invalid token", err)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return models.User{}, apperror.Unauthenticated("token expired")
	}

	id, err := ParseUserID(claims.User.ID)
	if err != nil {
		return models.User{}, apperror.Wrap(apperror.Authentication, "invalid token", err)
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return models.User{}, apperror.Unauthenticated("user not found")
		}
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, apperror.Unauthenticated("user inactive or deleted")
	}
	return user, nil
}

// ParseUserID extracts the database id from a token subject like "local_12".
func ParseUserID(subject string) (uint, error) {
	raw, ok := strings.CutPrefix(subject, userIDPrefix)
	if !ok {
		return 0, errors.New("unexpected user id format")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing user id: %w", err)
	}
	return uint(id), nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
