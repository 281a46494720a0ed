package application

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/memory"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// recorder collects every published change.
type recorder struct {
	mu      sync.Mutex
	changes []event.Change
}

func (r *recorder) Notify(_ context.Context, changes ...event.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes...)
	return nil
}

func (r *recorder) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.RoutingKey())
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}

// mapCache is a versioned ViewCache that also invalidates itself on changes.
type mapCache struct {
	mu       sync.Mutex
	versions map[event.Collection]int64
	entries  map[event.Collection]map[string][]byte
	hits     int
}

func newMapCache() *mapCache {
	return &mapCache{versions: map[event.Collection]int64{}, entries: map[event.Collection]map[string][]byte{}}
}

func (c *mapCache) Version(_ context.Context, col event.Collection) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[col], nil
}

func (c *mapCache) Get(_ context.Context, col event.Collection, version int64, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.versions[col] {
		return false, nil
	}
	b, ok := c.entries[col][key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, col event.Collection, version int64, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.versions[col] {
		return nil
	}
	if c.entries[col] == nil {
		c.entries[col] = map[string][]byte{}
	}
	c.entries[col][key] = b
	return nil
}

func (c *mapCache) Notify(_ context.Context, changes ...event.Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range changes {
		for _, col := range ch.Affected() {
			c.versions[col]++
			delete(c.entries, col)
		}
	}
	return nil
}

func (c *mapCache) cached(col event.Collection) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[col])
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]entity.Post
	removed []string
}

func (f *fakeIndex) Index(_ context.Context, p entity.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p.ID] = p
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.docs, id)
	}
	f.removed = append(f.removed, ids...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q string, size int) ([]entity.PostHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.PostHit{}
	for _, p := range f.docs {
		if p.Title == q && len(out) < size {
			out = append(out, entity.PostHit{ID: p.ID, Title: p.Title, AuthorID: p.AuthorID})
		}
	}
	return out, nil
}

type env struct {
	store    *memory.Store
	events   *recorder
	cache    *mapCache
	index    *fakeIndex
	users    *UserService
	posts    *PostService
	comments *CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		store:  store,
		events: &recorder{},
		cache:  newMapCache(),
		index:  &fakeIndex{docs: map[string]entity.Post{}},
	}
	d := Deps{
		Users:    store.Users(),
		Posts:    store.Posts(),
		Comments: store.Comments(),
		Tx:       store,
		Cache:    e.cache,
		Notifier: event.Fanout{e.cache, e.events},
		Search:   e.index,
		Logger:   quietLogger(),
	}
	e.users = NewUserService(d)
	e.posts = NewPostService(d, 0)
	e.comments = NewCommentService(d)
	return e
}

// mockComments fails the cascade step it is told to.
type mockComments struct {
	mock.Mock
}

func (m *mockComments) Create(ctx context.Context, c *entity.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockComments) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*entity.Comment)
	return c, args.Error(1)
}

func (m *mockComments) Delete(ctx context.Context, id string) (*entity.Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*entity.Comment)
	return c, args.Error(1)
}

func (m *mockComments) DeleteByPost(ctx context.Context, postID string) ([]string, error) {
	args := m.Called(ctx, postID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockComments) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetDetail(ctx context.Context, id string, commentLimit int) (*entity.User, error) {
	args := m.Called(ctx, id, commentLimit)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUsers) List(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Error(1)
}

func (m *mockUsers) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockUsers) Delete(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

type mockPosts struct {
	mock.Mock
}

func (m *mockPosts) Create(ctx context.Context, p *entity.Post) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPosts) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Post)
	return p, args.Error(1)
}

func (m *mockPosts) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPosts) List(ctx context.Context, limit int) ([]entity.Post, error) {
	args := m.Called(ctx, limit)
	posts, _ := args.Get(0).([]entity.Post)
	return posts, args.Error(1)
}

func (m *mockPosts) Delete(ctx context.Context, id string) (*entity.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Post)
	return p, args.Error(1)
}

func (m *mockPosts) DeleteByAuthor(ctx context.Context, authorID string) ([]string, error) {
	args := m.Called(ctx, authorID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}
