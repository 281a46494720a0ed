package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	repo "github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

// persistenceErr mimics a wrapped persistence failure with an underlying cause.
type persistenceErr struct{ cause error }

func (e persistenceErr) Error() string   { return "failed" }
func (e persistenceErr) Unwrap() []error { return []error{app.ErrPersistence, e.cause} }

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{app.ErrEmailRequired, http.StatusBadRequest},
		{app.ErrAuthorNotFound, http.StatusNotFound},
		{app.ErrEmailTaken, http.StatusConflict},
		{app.ErrInvalidCredentials, http.StatusUnauthorized},
		{app.ErrSnapshotUnavailable, http.StatusServiceUnavailable},
		{persistenceErr{cause: repo.ErrNotFound}, http.StatusNotFound},
		{persistenceErr{cause: errors.New("conn reset")}, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", app.ErrPostNotFound), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}
