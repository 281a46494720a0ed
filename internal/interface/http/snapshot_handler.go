package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	"github.com/oksasatya/go-ddd-postboard/pkg/response"
)

type SnapshotHandler struct {
	Svc    *app.SnapshotService
	Logger *logrus.Logger
}

func NewSnapshotHandler(svc *app.SnapshotService, logger *logrus.Logger) *SnapshotHandler {
	return &SnapshotHandler{Svc: svc, Logger: logger}
}

func (h *SnapshotHandler) Export(c *gin.Context) {
	url, err := h.Svc.ExportSnapshot(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url}, "snapshot exported", nil)
}
