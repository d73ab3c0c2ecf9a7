package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ballpit/backend/internal/config"
	"github.com/ballpit/backend/internal/models"
	"github.com/ballpit/backend/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// CreateSession starts a new sandbox session, optionally from a saved scene.
// The response carries the public session token (share it with viewers) and
// the owner token (keep it; it authorizes control messages).
func CreateSession(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SceneID   int   `json:"scene_id"`
			BallCount int   `json:"ball_count"`
			Seed      int64 `json:"seed"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var scene *models.Scene
		if req.SceneID > 0 {
			var s models.Scene
			err := db.Get(&s, `SELECT * FROM scenes WHERE id=$1`, req.SceneID)
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "scene not found"})
				return
			}
			if err != nil {
				log.Printf("[DB] Failed to load scene %d: %v", req.SceneID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			scene = &s
		}

		s, err := session.Default.CreateSession(scene, req.BallCount, req.Seed)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ownerToken, err := session.IssueOwnerToken(s.Token, cfg.JWTSecret, time.Duration(cfg.SessionTTLMin)*time.Minute)
		if err != nil {
			log.Printf("Failed to sign owner token: %v", err)
			session.Default.StopSession(s.Token, "token signing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"token":       s.Token,
			"owner_token": ownerToken,
			"config":      s.Config(),
		})
	}
}

// GetSessionState returns the latest frame for a session. Live sessions are
// read directly; for sessions this instance does not host, the Redis
// snapshot (if still cached) is served instead.
func GetSessionState(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if s, err := session.Default.GetSession(token); err == nil {
			tick, collisions, ballCount := s.Stats()
			c.JSON(http.StatusOK, gin.H{
				"status":     s.Status(),
				"tick":       tick,
				"collisions": collisions,
				"ball_count": ballCount,
				"frame":      s.Snapshot(),
			})
			return
		}

		if rdb != nil {
			data, err := rdb.Get(context.Background(), "session:"+token+":snapshot").Result()
			if err == nil {
				var frame session.Frame
				if json.Unmarshal([]byte(data), &frame) == nil {
					c.JSON(http.StatusOK, gin.H{"status": "CACHED", "frame": frame})
					return
				}
			}
		}

		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
}

// StopSession halts a session. Requires the owner token as a bearer header.
func StopSession(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing owner token"})
			return
		}
		ownerToken := strings.TrimPrefix(auth, "Bearer ")
		if err := session.VerifyOwnerToken(ownerToken, token, cfg.JWTSecret); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid owner token"})
			return
		}

		if err := session.Default.StopSession(token, "stopped by owner"); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "stopped"})
	}
}

// ListSessions returns a public view of the live sessions on this instance.
func ListSessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := session.Default.ListSessions()
		out := make([]gin.H, 0, len(sessions))
		for _, s := range sessions {
			tick, _, ballCount := s.Stats()
			out = append(out, gin.H{
				"token":      s.Token,
				"status":     s.Status(),
				"tick":       tick,
				"ball_count": ballCount,
			})
		}
		c.JSON(http.StatusOK, gin.H{"sessions": out})
	}
}

// ListRuns returns recent run summaries, newest first.
func ListRuns(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 50)
		offset := intQuery(c, "offset", 0)

		var runs []models.Run
		err := db.Select(&runs, `
			SELECT id, session_token, scene_id, ball_count, ticks, collisions, started_at, ended_at, end_reason
			FROM runs ORDER BY started_at DESC LIMIT $1 OFFSET $2
		`, limit, offset)
		if err != nil {
			log.Printf("[DB] Failed to list runs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs})
	}
}
