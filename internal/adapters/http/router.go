package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/adapters/signal"
	"github.com/okutsen/chatline/internal/adapters/store"
	"github.com/okutsen/chatline/internal/app"
	"github.com/okutsen/chatline/internal/config"
)

// API groups the dependencies of the HTTP handlers.
type API struct {
	Store *store.Store
	Hub   *app.Hub
	Cfg   *config.Config
}

// ClientTokenMiddleware tags each browser with a stable device cookie,
// used for request correlation in logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, api *API) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessionStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ChatlineSessions", sessionStore))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	auth := r.Group("/api/auth")
	auth.POST("/signup", api.handleSignup)
	auth.POST("/login", api.handleLogin)

	authed := r.Group("/api")
	authed.Use(AuthMiddleware(cfg.Secret))

	authed.GET("/messages/users", api.handleSidebarUsers)
	authed.GET("/messages/:id", api.handleConversation)
	authed.POST("/messages/send/:id", api.handleSendMessage)
	authed.PUT("/messages/mark/:id", api.handleMarkSeen)

	authed.POST("/groups", api.handleCreateGroup)
	authed.GET("/groups", api.handleListGroups)
	authed.GET("/groups/:id", api.handleGetGroup)
	authed.PUT("/groups/:id", api.handleUpdateGroup)
	authed.DELETE("/groups/:id", api.handleDeleteGroup)
	authed.POST("/groups/:id/members", api.handleAddMembers)
	authed.DELETE("/groups/:id/members", api.handleRemoveMember)
	authed.POST("/groups/:id/messages", api.handleSendGroupMessage)
	authed.GET("/groups/:id/messages", api.handleGroupMessages)

	ws := signal.NewWSController(api.Hub, cfg)
	authed.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("user", c.GetString("user_id")).Msg("ws endpoint hit")
		ws.HandleSocket(ctx, c)
	})

	return r
}
