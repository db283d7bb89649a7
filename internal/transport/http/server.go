package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dmarkhas/driftchat/internal/auth"
	"github.com/dmarkhas/driftchat/internal/config"
	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/media"
	"github.com/dmarkhas/driftchat/internal/store"
)

// NewServer builds the HTTP server: REST surface, websocket endpoint and
// static uploads.
func NewServer(
	registry *core.Registry,
	router *core.Router,
	authService *auth.Service,
	st store.Store,
	uploader media.Uploader,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", healthHandler)
	if cfg.UploadDir != "" {
		engine.Static(media.PublicPath, cfg.UploadDir)
	}

	authHandlers := NewAuthHandlers(authService, cfg, logger)
	messageHandlers := NewMessageHandlers(router, st, uploader, cfg, logger)
	wsHandler := NewWSHandler(registry, logger)

	api := engine.Group("/api")
	api.POST("/auth/signup", authHandlers.Signup)
	api.POST("/auth/login", authHandlers.Login)
	api.POST("/auth/logout", authHandlers.Logout)

	authorized := api.Group("", AuthMiddleware(authService, logger))
	authorized.GET("/auth/check", authHandlers.Check)
	authorized.PUT("/auth/update-profile", authHandlers.UpdateProfile)
	authorized.GET("/messages/users", messageHandlers.ListUsers)
	authorized.GET("/messages/:userId", messageHandlers.GetConversation)
	authorized.POST("/messages/send/:userId", messageHandlers.Send)

	// The socket carries the same cookie as the REST surface; the identity
	// is bound before any event traffic flows.
	engine.GET("/ws", AuthMiddleware(authService, logger), wsHandler.Serve)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	fmt.Fprint(c.Writer, "ok")
}
