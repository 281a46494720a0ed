package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and fills in ID and CreatedAt.
	// A taken email is reported as *DuplicateError{Field: "email"}.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetDetail loads the user with all posts, the most recent commentLimit comments and counts.
	GetDetail(ctx context.Context, id string, commentLimit int) (*entity.User, error)
	// List returns every user newest-first with counts and posts.
	List(ctx context.Context) ([]entity.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (*entity.User, error)
}
