package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
)

// CommentRepository defines the interface for comment-related database operations.
type CommentRepository interface {
	// Create inserts c and fills in ID and CreatedAt.
	// An unknown post or author is reported as ErrReferenceNotFound.
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	Delete(ctx context.Context, id string) (*entity.Comment, error)
	// DeleteByPost removes every comment on postID and returns their ids.
	DeleteByPost(ctx context.Context, postID string) ([]string, error)
	// DeleteByUser removes comments written by userID and comments on posts written by userID.
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
}
