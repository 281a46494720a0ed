package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-postboard/internal/interface/http"
)

// CommentsModule has no read routes; comments are read through users and posts.
type CommentsModule struct {
	Handler *handlers.CommentHandler
	Guard   []gin.HandlerFunc
}

func NewCommentsModule(h *handlers.CommentHandler, guard ...gin.HandlerFunc) *CommentsModule {
	return &CommentsModule{Handler: h, Guard: guard}
}

func (m *CommentsModule) Register(rg *gin.RouterGroup) {
	w := rg.Group("/comments", m.Guard...)
	w.POST("", m.Handler.Create)
	w.DELETE("/:id", m.Handler.Delete)
}

func (m *CommentsModule) Name() string { return "comments" }
