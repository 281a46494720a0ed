package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

type CommentService struct {
	Deps
}

func NewCommentService(d Deps) *CommentService {
	return &CommentService{Deps: d.withDefaults()}
}

// CreateComment checks the post before the author, so a request naming two missing
// records reports the post.
func (s *CommentService) CreateComment(ctx context.Context, content, postID, authorID string) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	postID = strings.TrimSpace(postID)
	authorID = strings.TrimSpace(authorID)
	if content == "" || postID == "" || authorID == "" {
		return nil, ErrCommentFieldsRequired
	}
	log := s.Logger.WithFields(logrus.Fields{"op": "CreateComment", "post_id": postID, "author_id": authorID})

	post, err := s.Posts.GetByID(ctx, postID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrPostNotFound
	case err != nil:
		log.WithError(err).Error("post lookup failed")
		return nil, failure(msgCreateComment, err)
	}
	author, err := s.Users.GetByID(ctx, authorID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrAuthorNotFound
	case err != nil:
		log.WithError(err).Error("author lookup failed")
		return nil, failure(msgCreateComment, err)
	}

	c := &entity.Comment{Content: content, PostID: postID, AuthorID: authorID}
	if err := s.Comments.Create(ctx, c); err != nil {
		if errors.Is(err, repo.ErrReferenceNotFound) {
			// removed between the lookups and the insert
			ok, existsErr := s.Posts.Exists(ctx, postID)
			switch {
			case existsErr != nil:
				log.WithError(existsErr).Error("post lookup failed")
				return nil, failure(msgCreateComment, existsErr)
			case !ok:
				return nil, ErrPostNotFound
			}
			return nil, ErrAuthorNotFound
		}
		log.WithError(err).Error("create comment failed")
		return nil, failure(msgCreateComment, err)
	}
	c.Post = post
	c.Author = author

	s.afterCommit(ctx, []event.Change{
		created(event.Comments, c.ID, c.CreatedAt, s.commentData(ctx, c)),
	})
	return c, nil
}

// commentData carries what a mail notification to the post author needs.
func (s *CommentService) commentData(ctx context.Context, c *entity.Comment) map[string]any {
	data := map[string]any{
		"post_id":        c.PostID,
		"post_title":     c.Post.Title,
		"post_author_id": c.Post.AuthorID,
		"author_id":      c.AuthorID,
		"author_name":    c.Author.Name,
		"author_email":   c.Author.Email,
		"content":        c.Content,
	}
	postAuthor := c.Author
	if c.Post.AuthorID != c.AuthorID {
		u, err := s.Users.GetByID(ctx, c.Post.AuthorID)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", c.Post.AuthorID).Warn("post author lookup failed")
			return data
		}
		postAuthor = u
	}
	data["post_author_email"] = postAuthor.Email
	data["post_author_name"] = postAuthor.Name
	return data
}

func (s *CommentService) DeleteComment(ctx context.Context, id string) (*entity.Comment, error) {
	c, err := s.Comments.Delete(ctx, id)
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "DeleteComment", "comment_id": id}).Error("delete comment failed")
		return nil, failure(msgDeleteComment, err)
	}
	s.afterCommit(ctx, []event.Change{
		deleted(event.Comments, c.ID, map[string]any{"post_id": c.PostID, "author_id": c.AuthorID}),
	})
	return c, nil
}
