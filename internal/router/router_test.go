package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	"github.com/oksasatya/go-ddd-postboard/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
	"github.com/oksasatya/go-ddd-postboard/pkg/validation"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newServer(t *testing.T, auth *app.AuthService) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	deps := app.Deps{Users: store.Users(), Posts: store.Posts(), Comments: store.Comments(), Tx: store, Logger: logger}
	s := Services{
		Users:     app.NewUserService(deps),
		Posts:     app.NewPostService(deps, 0),
		Comments:  app.NewCommentService(deps),
		Snapshots: app.NewSnapshotService(deps, nil),
		Auth:      auth,
	}

	engine := gin.New()
	reg := NewRegistry(engine)
	Mount(reg, s, Options{AuthEnabled: auth != nil, Logger: logger})
	reg.RegisterAll()
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) create(path string, body any) map[string]any {
	s.t.Helper()
	w, env := s.do(http.MethodPost, path, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out map[string]any
	require.NoError(s.t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealthz(t *testing.T) {
	s := newServer(t, nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string   `json:"status"`
		Modules []string `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Subset(t, body.Modules, []string{"users", "posts", "comments", "admin"})
}

func TestUsersAPI(t *testing.T) {
	s := newServer(t, nil)

	w, env := s.do(http.MethodPost, "/api/users", map[string]string{"email": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email is required", env.Message)
	assert.False(t, env.Success)

	u := s.create("/api/users", map[string]string{"email": "dup@x.com", "name": "First"})
	assert.Equal(t, "dup@x.com", u["email"])

	w, env = s.do(http.MethodPost, "/api/users", map[string]string{"email": "dup@x.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "a user with this email already exists", env.Message)

	w, env = s.do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 1)

	w, _ = s.do(http.MethodGet, "/api/users/"+u["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(http.MethodGet, "/api/users/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", env.Message)

	w, _ = s.do(http.MethodDelete, "/api/users/"+u["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(http.MethodDelete, "/api/users/"+u["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "failed to delete user", env.Message)
}

func TestPostsAndCommentsAPI(t *testing.T) {
	s := newServer(t, nil)

	u := s.create("/api/users", map[string]string{"email": "a@x.com"})
	uid := u["id"].(string)

	w, env := s.do(http.MethodPost, "/api/posts", map[string]any{"title": "t", "author_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "author not found", env.Message)

	w, env = s.do(http.MethodPost, "/api/posts", map[string]any{"title": "", "author_id": uid})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title and author are required", env.Message)

	p := s.create("/api/posts", map[string]any{"title": "hello", "content": "world", "author_id": uid, "published": true})
	pid := p["id"].(string)
	assert.Equal(t, true, p["published"])

	w, env = s.do(http.MethodPost, "/api/comments", map[string]any{"content": "c", "post_id": "ghost", "author_id": uid})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "post not found", env.Message)

	c := s.create("/api/comments", map[string]any{"content": "nice", "post_id": pid, "author_id": uid})

	w, env = s.do(http.MethodGet, "/api/posts?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	require.Len(t, posts, 1)
	assert.Len(t, posts[0]["comments"], 1)

	w, _ = s.do(http.MethodGet, "/api/posts?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// no index configured
	w, env = s.do(http.MethodGet, "/api/posts/search?q=hello", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(env.Data))

	w, _ = s.do(http.MethodDelete, "/api/comments/"+c["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(http.MethodDelete, "/api/comments/"+c["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "failed to delete comment", env.Message)

	w, _ = s.do(http.MethodDelete, "/api/posts/"+pid, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMalformedJSON(t *testing.T) {
	s := newServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid payload")
}

func TestSnapshotWithoutStorage(t *testing.T) {
	s := newServer(t, nil)
	w, env := s.do(http.MethodPost, "/api/admin/snapshots", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "snapshot storage not configured", env.Message)
}

func TestAuthGuardsMutations(t *testing.T) {
	hash, err := helpers.HashPassword("s3cret-pass")
	require.NoError(t, err)
	auth := app.NewAuthService("admin@example.com", hash, helpers.NewJWTManager("a", "r", time.Minute, time.Hour), nil, nil)
	s := newServer(t, auth)

	// reads stay public
	w, _ := s.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/users", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", env.Message)

	w, _ = s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	var access *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			access = c
		}
	}
	require.NotNil(t, access)

	w, _ = s.do(http.MethodPost, "/api/users", map[string]string{"email": "a@x.com"}, access)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/logout", nil, access)
	assert.Equal(t, http.StatusOK, w.Code)
}
