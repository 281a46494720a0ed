package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registry collects modules and mounts them under one API prefix.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

// NewRegistry mounts the API under /api.
func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use adds middleware that runs for every module route, ahead of per-route guards.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll registers the modules and a /healthz probe outside the API group.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	names := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		m.Register(r.API)
		names = append(names, m.Name())
	}
	r.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "modules": names})
	})
}
