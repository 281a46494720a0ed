package application

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

const (
	DefaultPostsLimit = 5
	MaxPostsLimit     = 100

	defaultSearchSize = 10
	maxSearchSize     = 50
)

type PostService struct {
	Deps
	// DefaultLimit is used when ListPosts is called with limit <= 0.
	DefaultLimit int
}

func NewPostService(d Deps, defaultLimit int) *PostService {
	if defaultLimit <= 0 || defaultLimit > MaxPostsLimit {
		defaultLimit = DefaultPostsLimit
	}
	return &PostService{Deps: d.withDefaults(), DefaultLimit: defaultLimit}
}

// ListPosts returns the limit most recent posts, each with author and comments.
func (s *PostService) ListPosts(ctx context.Context, limit int) ([]entity.Post, error) {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if limit > MaxPostsLimit {
		limit = MaxPostsLimit
	}

	posts, err := cached(ctx, &s.Deps, event.Posts, "latest:"+strconv.Itoa(limit), func(ctx context.Context) ([]entity.Post, error) {
		return s.Posts.List(ctx, limit)
	})
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "ListPosts", "limit": limit}).Error("list posts failed")
		return nil, failure(msgFetchPosts, err)
	}
	return posts, nil
}

func (s *PostService) CreatePost(ctx context.Context, title, content, authorID string, published bool) (*entity.Post, error) {
	title = strings.TrimSpace(title)
	authorID = strings.TrimSpace(authorID)
	if title == "" || authorID == "" {
		return nil, ErrTitleAndAuthorRequired
	}

	author, err := s.Users.GetByID(ctx, authorID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrAuthorNotFound
	case err != nil:
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "CreatePost", "author_id": authorID}).Error("author lookup failed")
		return nil, failure(msgCreatePost, err)
	}

	p := &entity.Post{Title: title, Content: content, Published: published, AuthorID: authorID}
	if err := s.Posts.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrReferenceNotFound) {
			return nil, ErrAuthorNotFound
		}
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "CreatePost", "author_id": authorID}).Error("create post failed")
		return nil, failure(msgCreatePost, err)
	}
	p.Author = author

	s.afterCommit(ctx, []event.Change{
		created(event.Posts, p.ID, p.CreatedAt, map[string]any{"title": p.Title, "author_id": p.AuthorID}),
	}, s.indexPost(*p))
	return p, nil
}

// DeletePost removes the post and every comment on it in one transaction.
func (s *PostService) DeletePost(ctx context.Context, id string) (*entity.Post, error) {
	var (
		p          *entity.Post
		commentIDs []string
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if commentIDs, err = s.Comments.DeleteByPost(ctx, id); err != nil {
			return err
		}
		p, err = s.Posts.Delete(ctx, id)
		return err
	})
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "DeletePost", "post_id": id}).Error("delete post failed")
		return nil, failure(msgDeletePost, err)
	}

	changes := make([]event.Change, 0, 1+len(commentIDs))
	changes = append(changes, deleted(event.Posts, p.ID, map[string]any{"author_id": p.AuthorID}))
	for _, cid := range commentIDs {
		changes = append(changes, deleted(event.Comments, cid, map[string]any{"post_id": p.ID}))
	}
	s.afterCommit(ctx, changes, s.unindexPosts(p.ID))
	return p, nil
}

// SearchPosts runs a full-text query over titles and content.
// Without a configured index it returns no hits.
func (s *PostService) SearchPosts(ctx context.Context, q string, size int) ([]entity.PostHit, error) {
	q = strings.TrimSpace(q)
	if s.Search == nil || q == "" {
		return []entity.PostHit{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	hits, err := s.Search.Search(ctx, q, size)
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "SearchPosts", "q": q}).Error("search posts failed")
		return nil, failure(msgSearchPosts, err)
	}
	return hits, nil
}
