package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	"github.com/oksasatya/go-ddd-postboard/pkg/response"
)

type PostHandler struct {
	Svc    *app.PostService
	Logger *logrus.Logger
}

func NewPostHandler(svc *app.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

type createPostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	AuthorID  string `json:"author_id"`
	Published bool   `json:"published"`
}

type listPostsQuery struct {
	Limit int `form:"limit" binding:"gte=0"`
}

type searchPostsQuery struct {
	Q    string `form:"q"`
	Size int    `form:"size" binding:"gte=0"`
}

func (h *PostHandler) List(c *gin.Context) {
	var q listPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	posts, err := h.Svc.ListPosts(c.Request.Context(), q.Limit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", map[string]any{"count": len(posts)})
}

func (h *PostHandler) Search(c *gin.Context) {
	var q searchPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	hits, err := h.Svc.SearchPosts(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits), "q": q.Q})
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	p, err := h.Svc.CreatePost(c.Request.Context(), req.Title, req.Content, req.AuthorID, req.Published)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "post created", nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	p, err := h.Svc.DeletePost(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post deleted", nil)
}
