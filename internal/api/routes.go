package api

import (
	"log"

	"github.com/ballpit/backend/internal/api/handlers"
	"github.com/ballpit/backend/internal/config"
	"github.com/ballpit/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Session endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(db, cfg))
			sessions.GET("", handlers.ListSessions())
			sessions.GET("/:token", handlers.GetSessionState(rdb))
			sessions.GET("/:token/ws", ws.HandleWebSocket)
			sessions.DELETE("/:token", handlers.StopSession(cfg))
		}

		// Scene presets
		scenes := v1.Group("/scenes")
		{
			scenes.POST("", handlers.CreateScene(db))
			scenes.GET("", handlers.ListScenes(db))
			scenes.GET("/:id", handlers.GetScene(db))
			scenes.PUT("/:id", handlers.UpdateScene(db))
			scenes.DELETE("/:id", handlers.DeleteScene(db))
		}

		// Run history
		v1.GET("/runs", handlers.ListRuns(db))

		// Admin endpoints (bcrypt-token protected)
		adm := v1.Group("/admin")
		adm.Use(handlers.AdminAuthMiddleware(db))
		{
			adm.GET("/sessions", handlers.AdminListSessions(db))
			adm.DELETE("/sessions/:token", handlers.AdminKillSession(db))
			adm.GET("/audit", handlers.AdminAuditLogs(db))
		}
	}
}
