package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
)

// PostRepository defines the interface for post-related database operations.
type PostRepository interface {
	// Create inserts p and fills in ID and CreatedAt.
	// An unknown author is reported as ErrReferenceNotFound.
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	// List returns the limit most recent posts with author, comments (with author) and
	// comment count. A limit <= 0 returns every post.
	List(ctx context.Context, limit int) ([]entity.Post, error)
	Delete(ctx context.Context, id string) (*entity.Post, error)
	// DeleteByAuthor removes every post written by authorID and returns their ids.
	DeleteByAuthor(ctx context.Context, authorID string) ([]string, error)
}
