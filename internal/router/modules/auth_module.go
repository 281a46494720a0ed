package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-postboard/internal/interface/http"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	// Limit guards the public endpoints, Protect the session-bound ones.
	Limit   gin.HandlerFunc
	Protect []gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, limit gin.HandlerFunc, protect ...gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Limit: limit, Protect: protect}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", m.Limit, m.Handler.Login)
	rg.POST("/auth/refresh", m.Limit, m.Handler.Refresh)

	auth := rg.Group("/auth", m.Protect...)
	auth.POST("/logout", m.Handler.Logout)
}

func (m *AuthModule) Name() string { return "auth" }
