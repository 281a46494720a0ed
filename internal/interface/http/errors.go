package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	repo "github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
	"github.com/oksasatya/go-ddd-postboard/pkg/response"
	"github.com/oksasatya/go-ddd-postboard/pkg/validation"
)

// statusOf maps a service error kind to an HTTP status.
// A persistence failure caused by a missing row is reported as 404.
func statusOf(err error) int {
	switch {
	case errors.Is(err, app.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, app.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, logger *logrus.Logger, err error) {
	var appErr *app.Error
	if !errors.As(err, &appErr) {
		logger.WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Error[any](c, statusOf(err), appErr.Message, nil)
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
