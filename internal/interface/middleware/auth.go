package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-postboard/pkg/response"
)

const CtxOperatorKey = "operator"

// Authorizer resolves an access token to the operator it was issued to.
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string) (string, error)
}

// Auth accepts the access_token cookie or a Bearer Authorization header and requires a live session.
// It sets the operator in the Gin context on success.
func Auth(authz Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		operator, err := authz.Authorize(c.Request.Context(), token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}
		c.Set(CtxOperatorKey, operator)
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
