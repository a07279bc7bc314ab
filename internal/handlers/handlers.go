package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"filevault/internal/config"
	"filevault/internal/middleware"
	"filevault/internal/service"
)

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	auth    *service.AuthService
	uploads *service.UploadService
	files   *service.FileService
	db      *pgxpool.Pool
	cache   *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	uploads *service.UploadService,
	files *service.FileService,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		auth:    auth,
		uploads: uploads,
		files:   files,
		db:      db,
		cache:   cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/status", h.Status)

	router.GET("/connect", h.Connect)
	router.GET("/disconnect", h.Disconnect)
	router.POST("/users", h.CreateUser)

	// Download authorizes per record (public flag or ownership), so
	// it sits outside the token middleware.
	router.GET("/files/:id/data", h.DownloadFile)

	protected := router.Group("")
	protected.Use(middleware.Auth(h.auth))
	protected.GET("/users/me", h.Me)
	protected.POST("/files", h.UploadFile)
	protected.GET("/files", h.ListFiles)
	protected.GET("/files/:id", h.ShowFile)
	protected.PUT("/files/:id/publish", h.PublishFile)
	protected.PUT("/files/:id/unpublish", h.UnpublishFile)
}
