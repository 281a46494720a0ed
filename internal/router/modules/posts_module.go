package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-postboard/internal/interface/http"
)

type PostsModule struct {
	Handler *handlers.PostHandler
	Guard   []gin.HandlerFunc
}

func NewPostsModule(h *handlers.PostHandler, guard ...gin.HandlerFunc) *PostsModule {
	return &PostsModule{Handler: h, Guard: guard}
}

func (m *PostsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/posts", m.Handler.List)
	rg.GET("/posts/search", m.Handler.Search)

	w := rg.Group("/posts", m.Guard...)
	w.POST("", m.Handler.Create)
	w.DELETE("/:id", m.Handler.Delete)
}

func (m *PostsModule) Name() string { return "posts" }
