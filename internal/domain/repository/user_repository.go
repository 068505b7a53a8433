package repository

import (
	"context"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
)

// UserRepository defines the persistence operations for users.
// Implementations return apperror NotFound for missing rows and Conflict for a
// duplicate email.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// Search matches name or bio case-insensitively as a substring.
	Search(ctx context.Context, query string, limit int) ([]*entity.User, error)
	// List pages through every user ordered by creation time then id.
	List(ctx context.Context, offset, limit int) ([]*entity.User, error)
}

// UserIndex is an optional secondary search index for profiles.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, query string, limit int) ([]*entity.User, error)
}
