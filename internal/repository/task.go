package repository

import (
	"context"

	"taskmaster/internal/domain"
)

// Repository is the generic CRUD contract shared by entity stores.
// GetByID reports a missing row through ok=false, never through err.
type Repository[T any] interface {
	Add(ctx context.Context, entity *T) (*T, error)
	GetByID(ctx context.Context, id int64) (entity *T, ok bool, err error)
	GetAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id int64, entity *T) error
	Delete(ctx context.Context, id int64) error
}

// TaskRepository exposes persistence operations for Task entities.
type TaskRepository interface {
	Repository[domain.Task]
	Init(ctx context.Context) error
}
