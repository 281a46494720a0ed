package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/memory"
)

func TestCreateComment_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := [][3]string{
		{"", "p", "a"},
		{"c", "", "a"},
		{"c", "p", ""},
		{"  ", "p", "a"},
	}
	for _, tc := range cases {
		_, err := e.comments.CreateComment(ctx, tc[0], tc[1], tc[2])
		assert.ErrorIs(t, err, ErrCommentFieldsRequired)
		assert.EqualError(t, err, "content, post, and author are required")
	}
}

func TestCreateComment_MissingReferences(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.users.CreateUser(ctx, "a@x.com", "A")
	require.NoError(t, err)
	p, err := e.posts.CreatePost(ctx, "p", "", a.ID, false)
	require.NoError(t, err)
	e.events.reset()

	_, err = e.comments.CreateComment(ctx, "c", "ghost", a.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.EqualError(t, err, "post not found")

	_, err = e.comments.CreateComment(ctx, "c", p.ID, "ghost")
	assert.ErrorIs(t, err, ErrAuthorNotFound)

	// both missing: the post is reported
	_, err = e.comments.CreateComment(ctx, "c", "ghost", "ghost")
	assert.ErrorIs(t, err, ErrPostNotFound)

	posts, err := e.posts.ListPosts(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, posts[0].CommentCount)
	assert.Empty(t, e.events.keys())
}

func TestCreateComment_RecheckFailureIsPersistence(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	a := &entity.User{Email: "a@x.com"}
	require.NoError(t, store.Users().Create(ctx, a))

	post := &entity.Post{ID: "p1", Title: "t", AuthorID: a.ID}
	posts := &mockPosts{}
	posts.On("GetByID", mock.Anything, "p1").Return(post, nil)
	down := errors.New("connection refused")
	posts.On("Exists", mock.Anything, "p1").Return(false, down)

	comments := &mockComments{}
	comments.On("Create", mock.Anything, mock.Anything).Return(repo.ErrReferenceNotFound)

	events := &recorder{}
	svc := NewCommentService(Deps{
		Users:    store.Users(),
		Posts:    posts,
		Comments: comments,
		Tx:       store,
		Notifier: events,
		Logger:   quietLogger(),
	})

	_, err := svc.CreateComment(ctx, "c", "p1", a.ID)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "failed to create comment")
	assert.Empty(t, events.keys())
	posts.AssertExpectations(t)
	comments.AssertExpectations(t)
}

func TestCreateComment_PostRemovedBeforeInsert(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	a := &entity.User{Email: "a@x.com"}
	require.NoError(t, store.Users().Create(ctx, a))

	posts := &mockPosts{}
	posts.On("GetByID", mock.Anything, "p1").Return(&entity.Post{ID: "p1", AuthorID: a.ID}, nil)
	posts.On("Exists", mock.Anything, "p1").Return(false, nil)
	comments := &mockComments{}
	comments.On("Create", mock.Anything, mock.Anything).Return(repo.ErrReferenceNotFound)

	svc := NewCommentService(Deps{Users: store.Users(), Posts: posts, Comments: comments, Tx: store, Logger: quietLogger()})
	_, err := svc.CreateComment(ctx, "c", "p1", a.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCreateComment_AttachesPostAndAuthor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	owner, err := e.users.CreateUser(ctx, "owner@x.com", "Owner")
	require.NoError(t, err)
	reader, err := e.users.CreateUser(ctx, "reader@x.com", "Reader")
	require.NoError(t, err)
	p, err := e.posts.CreatePost(ctx, "p", "", owner.ID, false)
	require.NoError(t, err)
	e.events.reset()

	c, err := e.comments.CreateComment(ctx, "nice", p.ID, reader.ID)
	require.NoError(t, err)
	require.NotNil(t, c.Post)
	require.NotNil(t, c.Author)
	assert.Equal(t, p.ID, c.Post.ID)
	assert.Equal(t, reader.ID, c.Author.ID)

	require.Equal(t, []string{"comments.created"}, e.events.keys())
	data := e.events.changes[0].Data
	assert.Equal(t, "owner@x.com", data["post_author_email"])
	assert.Equal(t, "reader@x.com", data["author_email"])
	assert.Equal(t, "p", data["post_title"])
}

func TestDeleteComment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.users.CreateUser(ctx, "a@x.com", "A")
	require.NoError(t, err)
	p, err := e.posts.CreatePost(ctx, "p", "", a.ID, false)
	require.NoError(t, err)
	c, err := e.comments.CreateComment(ctx, "c", p.ID, a.ID)
	require.NoError(t, err)

	got, err := e.comments.DeleteComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	// the post survives
	posts, err := e.posts.ListPosts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Zero(t, posts[0].CommentCount)

	_, err = e.comments.DeleteComment(ctx, c.ID)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.EqualError(t, err, "failed to delete comment")
}
