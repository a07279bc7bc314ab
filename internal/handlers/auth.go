package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"filevault/internal/middleware"
	"filevault/internal/models"
	"filevault/internal/service"
)

// Connect exchanges Basic credentials for a session token.
func (h HandlerSet) Connect(c *gin.Context) {
	token, err := h.auth.Connect(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Disconnect revokes the presented token. An unknown token is a 401,
// same as every other auth failure.
func (h HandlerSet) Disconnect(c *gin.Context) {
	token := c.GetHeader(middleware.TokenHeader)

	if err := h.auth.Disconnect(c.Request.Context(), token); err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// respondAuthError keeps credential failures and infrastructure
// failures apart: the former are the caller's 401, the latter are not.
func (h HandlerSet) respondAuthError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	h.log.Error().Err(err).Msg("auth request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(middleware.CurrentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
