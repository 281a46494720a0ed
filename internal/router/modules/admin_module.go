package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-postboard/internal/interface/http"
)

type AdminModule struct {
	Snapshots *handlers.SnapshotHandler
	Guard     []gin.HandlerFunc
}

func NewAdminModule(h *handlers.SnapshotHandler, guard ...gin.HandlerFunc) *AdminModule {
	return &AdminModule{Snapshots: h, Guard: guard}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", m.Guard...)
	admin.POST("/snapshots", m.Snapshots.Export)
}

func (m *AdminModule) Name() string { return "admin" }
