package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"lucky-draw-backend/internal/common/errors"
)

const AdminTokenHeader = "X-Admin-Token"

// RequireAdmin пропускает запрос только с верным X-Admin-Token.
// Пустой токен в конфиге отключает админские маршруты целиком.
func RequireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			AbortWithError(c, errors.NewNotFoundError("route", c.Request.URL.Path))
			return
		}

		got := c.GetHeader(AdminTokenHeader)
		if got == "" {
			AbortWithError(c, errors.NewUnauthorizedError("admin token required"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			AbortWithError(c, errors.NewUnauthorizedError("invalid admin token"))
			return
		}

		c.Next()
	}
}
