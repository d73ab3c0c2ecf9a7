package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/ballpit/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type sceneRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	WorldWidth        float64 `json:"world_width" binding:"required"`
	WorldHeight       float64 `json:"world_height" binding:"required"`
	GravityX          float64 `json:"gravity_x"`
	GravityY          float64 `json:"gravity_y"`
	CellSize          float64 `json:"cell_size"`
	BounceStiffness   float64 `json:"bounce_stiffness"`
	ResolveIterations int     `json:"resolve_iterations"`
	CorrectionA       float64 `json:"correction_a"`
	CorrectionB       float64 `json:"correction_b"`
	MinY              float64 `json:"min_y"`
	BallCount         int     `json:"ball_count"`
	MinRadius         float64 `json:"min_radius"`
	MaxRadius         float64 `json:"max_radius"`
	Seed              int64   `json:"seed"`
}

func (r *sceneRequest) toScene() models.Scene {
	s := models.Scene{
		Name:              r.Name,
		Description:       r.Description,
		WorldWidth:        r.WorldWidth,
		WorldHeight:       r.WorldHeight,
		GravityX:          r.GravityX,
		GravityY:          r.GravityY,
		CellSize:          r.CellSize,
		BounceStiffness:   r.BounceStiffness,
		ResolveIterations: r.ResolveIterations,
		CorrectionA:       r.CorrectionA,
		CorrectionB:       r.CorrectionB,
		MinY:              r.MinY,
		BallCount:         r.BallCount,
		MinRadius:         r.MinRadius,
		MaxRadius:         r.MaxRadius,
		Seed:              r.Seed,
	}
	if s.CellSize <= 0 {
		s.CellSize = 50
	}
	if s.ResolveIterations <= 0 {
		s.ResolveIterations = 5
	}
	if s.CorrectionA == 0 && s.CorrectionB == 0 {
		s.CorrectionA, s.CorrectionB = 0.5, 0.5
	}
	if s.BallCount <= 0 {
		s.BallCount = 100
	}
	if s.MinRadius <= 0 {
		s.MinRadius = 5
	}
	if s.MaxRadius < s.MinRadius {
		s.MaxRadius = s.MinRadius
	}
	return s
}

// CreateScene saves a reusable simulation preset.
func CreateScene(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sceneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		scene := req.toScene()
		if err := scene.SimConfig().Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := db.Get(&scene.ID, `
			INSERT INTO scenes (name, description, world_width, world_height, gravity_x, gravity_y,
				cell_size, bounce_stiffness, resolve_iterations, correction_a, correction_b,
				min_y, ball_count, min_radius, max_radius, seed)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
			RETURNING id
		`, scene.Name, scene.Description, scene.WorldWidth, scene.WorldHeight,
			scene.GravityX, scene.GravityY, scene.CellSize, scene.BounceStiffness,
			scene.ResolveIterations, scene.CorrectionA, scene.CorrectionB, scene.MinY,
			scene.BallCount, scene.MinRadius, scene.MaxRadius, scene.Seed)
		if err != nil {
			log.Printf("[DB] Failed to create scene: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusCreated, scene)
	}
}

// ListScenes returns all saved presets.
func ListScenes(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var scenes []models.Scene
		if err := db.Select(&scenes, `SELECT * FROM scenes ORDER BY id`); err != nil {
			log.Printf("[DB] Failed to list scenes: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"scenes": scenes})
	}
}

// GetScene returns a single preset by id.
func GetScene(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scene id"})
			return
		}
		var scene models.Scene
		err = db.Get(&scene, `SELECT * FROM scenes WHERE id=$1`, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "scene not found"})
			return
		}
		if err != nil {
			log.Printf("[DB] Failed to get scene %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, scene)
	}
}

// UpdateScene replaces a preset's tuning values.
func UpdateScene(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scene id"})
			return
		}
		var req sceneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		scene := req.toScene()
		scene.ID = id
		if err := scene.SimConfig().Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := db.Exec(`
			UPDATE scenes SET name=$1, description=$2, world_width=$3, world_height=$4,
				gravity_x=$5, gravity_y=$6, cell_size=$7, bounce_stiffness=$8,
				resolve_iterations=$9, correction_a=$10, correction_b=$11, min_y=$12,
				ball_count=$13, min_radius=$14, max_radius=$15, seed=$16, updated_at=NOW()
			WHERE id=$17
		`, scene.Name, scene.Description, scene.WorldWidth, scene.WorldHeight,
			scene.GravityX, scene.GravityY, scene.CellSize, scene.BounceStiffness,
			scene.ResolveIterations, scene.CorrectionA, scene.CorrectionB, scene.MinY,
			scene.BallCount, scene.MinRadius, scene.MaxRadius, scene.Seed, id)
		if err != nil {
			log.Printf("[DB] Failed to update scene %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "scene not found"})
			return
		}
		c.JSON(http.StatusOK, scene)
	}
}

// DeleteScene removes a preset. Runs that referenced it keep a NULL scene_id.
func DeleteScene(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scene id"})
			return
		}
		res, err := db.Exec(`DELETE FROM scenes WHERE id=$1`, id)
		if err != nil {
			log.Printf("[DB] Failed to delete scene %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "scene not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
