package repository

import (
	"context"
	"errors"

	"taskmaster/internal/domain"
)

var (
	// ErrNotFound is returned by lookups that address a row that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column would be violated.
	ErrDuplicate = errors.New("record already exists")
)

// UserRepository defines persistence operations for User entities and their roles.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	EnsureRole(ctx context.Context, name string) error
	AddToRole(ctx context.Context, userID int64, role string) error
	GetRoles(ctx context.Context, userID int64) ([]string, error)
}

// RefreshTokenRepository stores issued refresh tokens so they can be exchanged or revoked.
type RefreshTokenRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, token *domain.RefreshToken) (int64, error)
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id int64) error
}
