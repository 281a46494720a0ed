package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
)

type DebugModule struct {
	Limit gin.HandlerFunc
}

func NewDebugModule(limit gin.HandlerFunc) *DebugModule { return &DebugModule{Limit: limit} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", m.Limit, gin.WrapH(expvar.Handler()))
}

func (m *DebugModule) Name() string { return "debug" }
