package repository

import (
	"context"

	"github.com/nyxlabs/userd/internal/domain"
)

// UserRepository persists users. Implementations own identity assignment:
// CreateUser and UpdateUser return the row as stored, including the id.
type UserRepository interface {
	CreateUser(ctx context.Context, name, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
