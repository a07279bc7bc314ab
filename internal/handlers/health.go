package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type statusResponse struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

func (h HandlerSet) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbAlive := true
	if err := h.db.Ping(ctx); err != nil {
		dbAlive = false
		h.log.Error().Err(err).Msg("database ping failed")
	}

	redisAlive := true
	if err := h.cache.Ping(ctx).Err(); err != nil {
		redisAlive = false
		h.log.Error().Err(err).Msg("redis ping failed")
	}

	c.JSON(http.StatusOK, statusResponse{
		Redis: redisAlive,
		DB:    dbAlive,
	})
}
