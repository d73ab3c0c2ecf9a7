package handlers

import (
	"log"
	"net/http"

	"github.com/ballpit/backend/internal/admin"
	"github.com/ballpit/backend/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// AdminAuthMiddleware validates the X-Admin-Username / X-Admin-Token header
// pair against the bcrypt hash stored in admin_accounts. On success the
// username is stashed in the gin context for audit logging.
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader("X-Admin-Username")
		token := c.GetHeader("X-Admin-Token")
		if username == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin credentials"})
			return
		}
		account, err := admin.ValidateAdminCredentials(db, username, token)
		if err != nil {
			admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "auth_failed", nil, false)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin credentials"})
			return
		}
		c.Set("admin_username", account.Username)
		c.Next()
	}
}

func adminUsername(c *gin.Context) string {
	if v, ok := c.Get("admin_username"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AdminListSessions returns every live session on this instance.
func AdminListSessions(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := session.Default.ListSessions()
		out := make([]gin.H, 0, len(sessions))
		for _, s := range sessions {
			tick, collisions, ballCount := s.Stats()
			out = append(out, gin.H{
				"token":      s.Token,
				"status":     s.Status(),
				"tick":       tick,
				"collisions": collisions,
				"ball_count": ballCount,
				"age":        s.Age().String(),
			})
		}
		admin.LogAdminAction(db, adminUsername(c), c.ClientIP(), c.FullPath(), "list_sessions",
			map[string]interface{}{"count": len(out)}, true)
		c.JSON(http.StatusOK, gin.H{"sessions": out})
	}
}

// AdminKillSession force-stops a session regardless of ownership.
func AdminKillSession(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		err := session.Default.StopSession(token, "terminated by admin")
		details := map[string]interface{}{"session": token}
		if err != nil {
			admin.LogAdminAction(db, adminUsername(c), c.ClientIP(), c.FullPath(), "kill_session", details, false)
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		admin.LogAdminAction(db, adminUsername(c), c.ClientIP(), c.FullPath(), "kill_session", details, true)
		c.JSON(http.StatusOK, gin.H{"status": "stopped"})
	}
}

// AdminAuditLogs returns recent admin audit entries, newest first.
func AdminAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 50)
		offset := intQuery(c, "offset", 0)
		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[DB] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs})
	}
}
