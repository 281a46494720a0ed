package router

import "github.com/gin-gonic/gin"

// Module is one feature area of the API. Name shows up in /healthz.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
