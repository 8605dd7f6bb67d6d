// Package repository is the explicit store over the relational schema.
//
// Lookups return *apperror.Error of kind NotFound when nothing matches and
// writes that hit a unique index return kind Conflict. Get-or-create helpers
// are safe under concurrent duplicate requests: the insert runs in a
// savepoint and a uniqueness violation falls back to a second lookup.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/krishkalaria12/linegrade/apperror"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 200
	maxListLimit     = 2000
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a store bound to a single transaction. Returning
// an error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 {
		p.Limit = defaultListLimit
	}
	if p.Limit > maxListLimit {
		p.Limit = maxListLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	p = p.normalized()
	return q.Limit(p.Limit).Offset(p.Offset)
}

// IsUniqueViolation reports whether err came from a unique index, for both
// postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFoundf("%s not found", entity)
	case IsUniqueViolation(err):
		return apperror.ConflictWrap(entity+" already exists", err)
	default:
		return err
	}
}

// getOrCreate looks a row up, inserts it on a miss and looks it up again if a
// concurrent insert won the race. The bool is true when this call inserted.
func getOrCreate[T any](db *gorm.DB, lookup func(*gorm.DB) (T, error), create func(*gorm.DB) (T, error)) (T, bool, error) {
	var zero T

	found, err := lookup(db)
	if err == nil {
		return found, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, false, err
	}

	var created T
	err = db.Transaction(func(tx *gorm.DB) error {
		var createErr error
		created, createErr = create(tx)
		return createErr
	})
	if err == nil {
		return created, true, nil
	}
	if !IsUniqueViolation(err) {
		return zero, false, err
	}

	found, err = lookup(db)
	if err != nil {
		return zero, false, err
	}
	return found, false, nil
}

// imagePaths collects stored file paths of images matched by where before
// they are deleted.
func imagePaths(tx *gorm.DB, where string, args ...any) ([]string, error) {
	var paths []string
	err := tx.Table("images").
		Where(where, args...).
		Where("image IS NOT NULL AND image <> ''").
		Pluck("image", &paths).Error
	return paths, err
}
