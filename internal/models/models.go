package models

import (
	"encoding/json"
	"time"

	"database/sql"

	"github.com/ballpit/backend/internal/sim"
)

// Scene is a persisted sandbox preset: world tuning plus placement bounds.
// It holds configuration only — live ball state is never written to the
// database.
type Scene struct {
	ID                int       `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Description       string    `db:"description" json:"description"`
	WorldWidth        float64   `db:"world_width" json:"world_width"`
	WorldHeight       float64   `db:"world_height" json:"world_height"`
	GravityX          float64   `db:"gravity_x" json:"gravity_x"`
	GravityY          float64   `db:"gravity_y" json:"gravity_y"`
	CellSize          float64   `db:"cell_size" json:"cell_size"`
	BounceStiffness   float64   `db:"bounce_stiffness" json:"bounce_stiffness"`
	ResolveIterations int       `db:"resolve_iterations" json:"resolve_iterations"`
	CorrectionA       float64   `db:"correction_a" json:"correction_a"`
	CorrectionB       float64   `db:"correction_b" json:"correction_b"`
	MinY              float64   `db:"min_y" json:"min_y"`
	BallCount         int       `db:"ball_count" json:"ball_count"`
	MinRadius         float64   `db:"min_radius" json:"min_radius"`
	MaxRadius         float64   `db:"max_radius" json:"max_radius"`
	Seed              int64     `db:"seed" json:"seed"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// SimConfig converts the persisted tuning into a simulation config.
func (s Scene) SimConfig() sim.Config {
	return sim.Config{
		Width:           s.WorldWidth,
		Height:          s.WorldHeight,
		Gravity:         sim.Vec2{X: s.GravityX, Y: s.GravityY},
		CellSize:        s.CellSize,
		BounceStiffness: s.BounceStiffness,
		Iterations:      s.ResolveIterations,
		CorrectionA:     s.CorrectionA,
		CorrectionB:     s.CorrectionB,
		MinY:            s.MinY,
	}
}

// Run is a completed (or in-flight) session summary row.
type Run struct {
	ID           int           `db:"id" json:"id"`
	SessionToken string        `db:"session_token" json:"session_token"`
	SceneID      sql.NullInt64 `db:"scene_id" json:"scene_id,omitempty"`
	BallCount    int           `db:"ball_count" json:"ball_count"`
	Ticks        int64         `db:"ticks" json:"ticks"`
	Collisions   int64         `db:"collisions" json:"collisions"`
	StartedAt    time.Time     `db:"started_at" json:"started_at"`
	EndedAt      sql.NullTime  `db:"ended_at" json:"ended_at,omitempty"`
	EndReason    string        `db:"end_reason" json:"end_reason"`
}

// AdminAccount is an operator login; the token is stored bcrypt-hashed.
type AdminAccount struct {
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	TokenHash   string    `db:"token_hash" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AdminAudit is one audit-log entry for an admin action.
type AdminAudit struct {
	ID            int             `db:"id" json:"id"`
	AdminUsername string          `db:"admin_username" json:"admin_username"`
	IP            string          `db:"ip" json:"ip"`
	Route         string          `db:"route" json:"route"`
	Action        string          `db:"action" json:"action"`
	Details       json.RawMessage `db:"details" json:"details"`
	Success       bool            `db:"success" json:"success"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
