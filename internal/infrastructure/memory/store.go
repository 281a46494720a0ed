package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

// Store keeps users, posts and comments in process memory.
// It backs STORAGE_DRIVER=memory and the application tests. It enforces the same unique
// and foreign key rules as the Postgres schema.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	users    map[string]entity.User
	posts    map[string]entity.Post
	comments map[string]entity.Comment
	last     time.Time
}

func NewStore() *Store {
	return &Store{
		users:    map[string]entity.User{},
		posts:    map[string]entity.Post{},
		comments: map[string]entity.Comment{},
	}
}

type txKey struct{}

// txLog holds the inverse of every write made inside one transaction.
type txLog struct {
	store *Store
	mu    sync.Mutex
	undo  []func()
}

// WithinTx serialises transactions. When fn fails only the writes made through the
// transaction ctx are reverted; concurrent writes from outside it are kept.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if l, ok := ctx.Value(txKey{}).(*txLog); ok && l.store == s {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	l := &txLog{store: s}
	if err := fn(context.WithValue(ctx, txKey{}, l)); err != nil {
		s.mu.Lock()
		for i := len(l.undo) - 1; i >= 0; i-- {
			l.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// record registers undo for the transaction bound to ctx, if any. Must be called with mu
// held; undo runs with mu held too.
func (s *Store) record(ctx context.Context, undo func()) {
	l, ok := ctx.Value(txKey{}).(*txLog)
	if !ok || l.store != s {
		return
	}
	l.mu.Lock()
	l.undo = append(l.undo, undo)
	l.mu.Unlock()
}

// now returns a strictly increasing timestamp so newest-first ordering is total.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func newestFirst[T any](items []T, at func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
}

// Users returns the UserRepository view of the store.
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Posts returns the PostRepository view of the store.
func (s *Store) Posts() repository.PostRepository { return (*postRepo)(s) }

// Comments returns the CommentRepository view of the store.
func (s *Store) Comments() repository.CommentRepository { return (*commentRepo)(s) }

type userRepo Store

func (r *userRepo) Create(ctx context.Context, u *entity.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return &repository.DuplicateError{Field: "email"}
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	s.users[u.ID] = entity.User{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
	id := u.ID
	s.record(ctx, func() { delete(s.users, id) })
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetDetail(_ context.Context, id string, commentLimit int) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Posts = s.postsBy(id)
	comments := s.commentsBy(id)
	u.Counts = entity.UserCounts{Posts: len(u.Posts), Comments: len(comments)}
	if commentLimit > 0 && len(comments) > commentLimit {
		comments = comments[:commentLimit]
	}
	u.Comments = comments
	return &u, nil
}

func (r *userRepo) List(_ context.Context) ([]entity.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		u.Posts = s.postsBy(u.ID)
		u.Counts = entity.UserCounts{Posts: len(u.Posts), Comments: len(s.commentsBy(u.ID))}
		out = append(out, u)
	}
	newestFirst(out, func(u entity.User) time.Time { return u.CreatedAt })
	return out, nil
}

func (r *userRepo) Exists(_ context.Context, id string) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, p := range s.posts {
		if p.AuthorID == id {
			return nil, repository.ErrInUse
		}
	}
	for _, c := range s.comments {
		if c.AuthorID == id {
			return nil, repository.ErrInUse
		}
	}
	delete(s.users, id)
	s.record(ctx, func() { s.users[id] = u })
	return &u, nil
}

// postsBy must be called with mu held.
func (s *Store) postsBy(authorID string) []entity.Post {
	out := []entity.Post{}
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	newestFirst(out, func(p entity.Post) time.Time { return p.CreatedAt })
	return out
}

// commentsBy must be called with mu held.
func (s *Store) commentsBy(authorID string) []entity.Comment {
	out := []entity.Comment{}
	for _, c := range s.comments {
		if c.AuthorID == authorID {
			out = append(out, c)
		}
	}
	newestFirst(out, func(c entity.Comment) time.Time { return c.CreatedAt })
	return out
}

type postRepo Store

func (r *postRepo) Create(ctx context.Context, p *entity.Post) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.AuthorID]; !ok {
		return repository.ErrReferenceNotFound
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	s.posts[p.ID] = entity.Post{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Published: p.Published,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
	}
	id := p.ID
	s.record(ctx, func() { delete(s.posts, id) })
	return nil
}

func (r *postRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *postRepo) Exists(_ context.Context, id string) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.posts[id]
	return ok, nil
}

func (r *postRepo) List(_ context.Context, limit int) ([]entity.Post, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	newestFirst(out, func(p entity.Post) time.Time { return p.CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		if a, ok := s.users[out[i].AuthorID]; ok {
			out[i].Author = &a
		}
		comments := []entity.Comment{}
		for _, c := range s.comments {
			if c.PostID != out[i].ID {
				continue
			}
			if a, ok := s.users[c.AuthorID]; ok {
				c.Author = &a
			}
			comments = append(comments, c)
		}
		newestFirst(comments, func(c entity.Comment) time.Time { return c.CreatedAt })
		out[i].Comments = comments
		out[i].CommentCount = len(comments)
	}
	return out, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) (*entity.Post, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, c := range s.comments {
		if c.PostID == id {
			return nil, repository.ErrInUse
		}
	}
	delete(s.posts, id)
	s.record(ctx, func() { s.posts[id] = p })
	return &p, nil
}

func (r *postRepo) DeleteByAuthor(ctx context.Context, authorID string) ([]string, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for id, p := range s.posts {
		if p.AuthorID != authorID {
			continue
		}
		for _, c := range s.comments {
			if c.PostID == id {
				return nil, repository.ErrInUse
			}
		}
		ids = append(ids, id)
	}
	removed := make(map[string]entity.Post, len(ids))
	for _, id := range ids {
		removed[id] = s.posts[id]
		delete(s.posts, id)
	}
	s.record(ctx, func() {
		for id, p := range removed {
			s.posts[id] = p
		}
	})
	sort.Strings(ids)
	return ids, nil
}

type commentRepo Store

func (r *commentRepo) Create(ctx context.Context, c *entity.Comment) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[c.PostID]; !ok {
		return repository.ErrReferenceNotFound
	}
	if _, ok := s.users[c.AuthorID]; !ok {
		return repository.ErrReferenceNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.comments[c.ID] = entity.Comment{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt,
	}
	id := c.ID
	s.record(ctx, func() { delete(s.comments, id) })
	return nil
}

func (r *commentRepo) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) (*entity.Comment, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.comments, id)
	s.record(ctx, func() { s.comments[id] = c })
	return &c, nil
}

func (r *commentRepo) DeleteByPost(ctx context.Context, postID string) ([]string, error) {
	return (*Store)(r).deleteComments(ctx, func(c entity.Comment) bool { return c.PostID == postID }), nil
}

func (r *commentRepo) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	s := (*Store)(r)
	return s.deleteComments(ctx, func(c entity.Comment) bool {
		p, ok := s.posts[c.PostID]
		return c.AuthorID == userID || (ok && p.AuthorID == userID)
	}), nil
}

// deleteComments removes every comment matching fn and returns the sorted ids.
func (s *Store) deleteComments(ctx context.Context, fn func(entity.Comment) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for id, c := range s.comments {
		if fn(c) {
			ids = append(ids, id)
		}
	}
	removed := make(map[string]entity.Comment, len(ids))
	for _, id := range ids {
		removed[id] = s.comments[id]
		delete(s.comments, id)
	}
	s.record(ctx, func() {
		for id, c := range removed {
			s.comments[id] = c
		}
	})
	sort.Strings(ids)
	return ids
}

var (
	_ repository.UserRepository    = (*userRepo)(nil)
	_ repository.PostRepository    = (*postRepo)(nil)
	_ repository.CommentRepository = (*commentRepo)(nil)
	_ repository.Transactor        = (*Store)(nil)
)
