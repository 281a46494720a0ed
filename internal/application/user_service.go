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

// RecentCommentLimit caps the comments returned with a single user.
const RecentCommentLimit = 10

type UserService struct {
	Deps
}

func NewUserService(d Deps) *UserService {
	return &UserService{Deps: d.withDefaults()}
}

// ListUsers returns every user newest-first with posts and counts.
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := cached(ctx, &s.Deps, event.Users, "list", s.Users.List)
	if err != nil {
		s.Logger.WithError(err).WithField("op", "ListUsers").Error("list users failed")
		return nil, failure(msgFetchUsers, err)
	}
	return users, nil
}

// GetUser returns one user with all posts, the most recent comments and counts.
func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := cached(ctx, &s.Deps, event.Users, "detail:"+id, func(ctx context.Context) (*entity.User, error) {
		return s.Users.GetDetail(ctx, id, RecentCommentLimit)
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "GetUser", "user_id": id}).Error("get user failed")
		return nil, failure(msgFetchUser, err)
	}
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, email, name string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	u := &entity.User{Email: email, Name: strings.TrimSpace(name)}
	if err := s.Users.Create(ctx, u); err != nil {
		if repo.IsDuplicate(err, "email") {
			return nil, ErrEmailTaken
		}
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "CreateUser", "email": email}).Error("create user failed")
		return nil, failure(msgCreateUser, err)
	}

	s.afterCommit(ctx, []event.Change{
		created(event.Users, u.ID, u.CreatedAt, map[string]any{"email": u.Email, "name": u.Name}),
	})
	return u, nil
}

// DeleteUser removes the user together with their comments, the comments on their posts
// and their posts, in one transaction.
func (s *UserService) DeleteUser(ctx context.Context, id string) (*entity.User, error) {
	var (
		u          *entity.User
		postIDs    []string
		commentIDs []string
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if commentIDs, err = s.Comments.DeleteByUser(ctx, id); err != nil {
			return err
		}
		if postIDs, err = s.Posts.DeleteByAuthor(ctx, id); err != nil {
			return err
		}
		u, err = s.Users.Delete(ctx, id)
		return err
	})
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"op": "DeleteUser", "user_id": id}).Error("delete user failed")
		return nil, failure(msgDeleteUser, err)
	}

	changes := make([]event.Change, 0, 1+len(postIDs)+len(commentIDs))
	changes = append(changes, deleted(event.Users, u.ID, map[string]any{"email": u.Email}))
	for _, pid := range postIDs {
		changes = append(changes, deleted(event.Posts, pid, map[string]any{"author_id": id}))
	}
	for _, cid := range commentIDs {
		changes = append(changes, deleted(event.Comments, cid, nil))
	}
	s.afterCommit(ctx, changes, s.unindexPosts(postIDs...))

	s.Logger.WithFields(logrus.Fields{
		"user_id":  id,
		"posts":    len(postIDs),
		"comments": len(commentIDs),
	}).Info("user deleted")
	return u, nil
}
