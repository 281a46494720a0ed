package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-postboard/internal/interface/http"
)

// UsersModule serves /users. Guard runs before every mutating route.
type UsersModule struct {
	Handler *handlers.UserHandler
	Guard   []gin.HandlerFunc
}

func NewUsersModule(h *handlers.UserHandler, guard ...gin.HandlerFunc) *UsersModule {
	return &UsersModule{Handler: h, Guard: guard}
}

func (m *UsersModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users", m.Handler.List)
	rg.GET("/users/:id", m.Handler.Get)

	w := rg.Group("/users", m.Guard...)
	w.POST("", m.Handler.Create)
	w.DELETE("/:id", m.Handler.Delete)
}

func (m *UsersModule) Name() string { return "users" }
