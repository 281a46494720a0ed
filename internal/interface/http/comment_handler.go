package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	"github.com/oksasatya/go-ddd-postboard/pkg/response"
)

type CommentHandler struct {
	Svc    *app.CommentService
	Logger *logrus.Logger
}

func NewCommentHandler(svc *app.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Svc: svc, Logger: logger}
}

type createCommentRequest struct {
	Content  string `json:"content"`
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	cm, err := h.Svc.CreateComment(c.Request.Context(), req.Content, req.PostID, req.AuthorID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, cm, "comment created", nil)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	cm, err := h.Svc.DeleteComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cm, "comment deleted", nil)
}
