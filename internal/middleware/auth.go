package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"filevault/internal/service"
)

const TokenHeader = "X-Token"

// CurrentUserKey is the gin context key holding the authenticated
// models.User.
const CurrentUserKey = "current_user"

// Auth resolves the X-Token header to a user. A token that does not
// resolve is a 401; a failing session store is not the caller's fault
// and aborts with a 500 instead.
func Auth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)

		user, err := auth.UserFromToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}
