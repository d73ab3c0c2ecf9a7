// Package session hosts live sandbox sessions: it owns the tick loops that
// drive the core simulation, the placement and color policies the core
// treats as collaborators, and the Redis/Postgres bookkeeping around each
// run.
package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/ballpit/backend/internal/config"
	"github.com/ballpit/backend/internal/models"
	"github.com/ballpit/backend/internal/sim"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// BroadcastFunc pushes a message to every client watching a session. The WS
// layer owns the connections; the session layer only knows this seam.
type BroadcastFunc func(sessionToken string, message interface{})

// Manager is the registry of live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	db        *sqlx.DB
	rdb       *redis.Client
	cfg       *config.Config
	broadcast BroadcastFunc
}

// Default is the process-wide manager, set by Initialize.
var Default *Manager

// Initialize creates the default manager.
func Initialize(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Default = &Manager{
		sessions: make(map[string]*Session),
		db:       db,
		rdb:      rdb,
		cfg:      cfg,
	}
}

// SetBroadcast wires the WS layer's broadcast function. Must be set before
// the first session starts ticking.
func (m *Manager) SetBroadcast(fn BroadcastFunc) {
	m.broadcast = fn
}

// defaultSimConfig builds the simulation tuning from server config.
func (m *Manager) defaultSimConfig() sim.Config {
	return sim.Config{
		Width:           m.cfg.WorldWidth,
		Height:          m.cfg.WorldHeight,
		Gravity:         sim.Vec2{X: m.cfg.GravityX, Y: m.cfg.GravityY},
		CellSize:        m.cfg.CellSize,
		BounceStiffness: m.cfg.BounceStiffness,
		Iterations:      m.cfg.ResolveIterations,
		CorrectionA:     m.cfg.CorrectionA,
		CorrectionB:     m.cfg.CorrectionB,
		MinY:            m.cfg.MinY,
	}
}

// CreateSession starts a new sandbox. A nil scene means server defaults;
// otherwise the scene's tuning, placement bounds, and seed apply. The config
// is validated before any ball is placed, and the run row is recorded before
// the tick loop starts.
func (m *Manager) CreateSession(scene *models.Scene, ballCount int, seed int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.cfg.MaxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", m.cfg.MaxSessions)
	}

	simCfg := m.defaultSimConfig()
	minRadius, maxRadius := 5.0, 15.0
	sceneID := 0
	if scene != nil {
		simCfg = scene.SimConfig()
		minRadius, maxRadius = scene.MinRadius, scene.MaxRadius
		sceneID = scene.ID
		if ballCount <= 0 {
			ballCount = scene.BallCount
		}
		if seed == 0 {
			seed = scene.Seed
		}
	}
	if ballCount <= 0 {
		ballCount = 100
	}
	if ballCount > m.cfg.MaxBalls {
		return nil, fmt.Errorf("ball count %d exceeds limit %d", ballCount, m.cfg.MaxBalls)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if err := simCfg.Validate(); err != nil {
		return nil, err
	}

	token := generateToken(16)
	placer := NewPlacer(seed, simCfg, minRadius, maxRadius)
	s := newSession(token, sceneID, simCfg, placer, m.cfg.MaxBalls)
	if err := s.populate(ballCount); err != nil {
		return nil, err
	}

	if m.db != nil {
		var runID int
		err := m.db.Get(&runID, `
			INSERT INTO runs (session_token, scene_id, ball_count, started_at)
			VALUES ($1, NULLIF($2, 0), $3, NOW())
			RETURNING id
		`, token, sceneID, ballCount)
		if err != nil {
			log.Printf("[DB] Failed to record run for session %s: %v", token, err)
		} else {
			s.RunID = runID
		}
	}

	m.sessions[token] = s
	go m.runLoop(s)

	log.Printf("[SIM] Session %s started (scene=%d balls=%d seed=%d)", token, sceneID, ballCount, seed)
	return s, nil
}

// GetSession returns a live session by token.
func (m *Manager) GetSession(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return s, nil
}

// ListSessions returns all live sessions.
func (m *Manager) ListSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// StopSession halts the tick loop, finalizes the run row, and announces the
// closure on the session events channel.
func (m *Manager) StopSession(token, reason string) error {
	m.mu.Lock()
	s, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session not found")
	}

	s.stopOnce.Do(func() { close(s.stop) })
	s.markStopped()
	m.finalizeRun(s, reason)
	m.publishEvent(map[string]interface{}{
		"type":   "session_closed",
		"token":  token,
		"reason": reason,
	})

	log.Printf("[SIM] Session %s stopped (%s)", token, reason)
	return nil
}

func (m *Manager) finalizeRun(s *Session, reason string) {
	if m.db == nil || s.RunID == 0 {
		return
	}
	tick, collisions, ballCount := s.Stats()
	_, err := m.db.Exec(`
		UPDATE runs SET ticks=$1, collisions=$2, ball_count=$3, ended_at=NOW(), end_reason=$4
		WHERE id=$5
	`, tick, collisions, ballCount, reason, s.RunID)
	if err != nil {
		log.Printf("[DB] Failed to finalize run %d: %v", s.RunID, err)
	}
}

// publishEvent fans a session event out over Redis so every server instance's
// WS layer can relay it to its own rooms.
func (m *Manager) publishEvent(payload map[string]interface{}) {
	if m.rdb == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[SIM] Failed to marshal session event: %v", err)
		return
	}
	if err := m.rdb.Publish(context.Background(), "session_events", data).Err(); err != nil {
		log.Printf("[SIM] Failed to publish session event: %v", err)
	}
}

// saveSnapshot caches the latest frame in Redis with a TTL. This is an
// ephemeral read-model for late joiners and state queries, not durable
// simulation state; it dies with the key's TTL.
func (m *Manager) saveSnapshot(s *Session) {
	if m.rdb == nil {
		return
	}
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		log.Printf("[SIM] Failed to marshal snapshot for %s: %v", s.Token, err)
		return
	}
	key := "session:" + s.Token + ":snapshot"
	if err := m.rdb.SetEx(context.Background(), key, data, time.Hour).Err(); err != nil {
		log.Printf("[SIM] Failed to save snapshot for %s: %v", s.Token, err)
	}
}

// runLoop drives one session at the configured tick rate until stopped or
// expired. The simulation itself is single-threaded: one Step per tick,
// no overlap between ticks.
func (m *Manager) runLoop(s *Session) {
	interval := tickInterval(m.cfg.TickRate)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	snapshotEvery := int64(m.cfg.SnapshotEverySec) * int64(time.Second/interval)
	if snapshotEvery <= 0 {
		snapshotEvery = 300
	}
	ttl := time.Duration(m.cfg.SessionTTLMin) * time.Minute

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			frame := s.step(dt)

			if m.broadcast != nil {
				m.broadcast(s.Token, frame)
			}
			if frame.Tick%snapshotEvery == 0 {
				m.saveSnapshot(s)
			}
			if ttl > 0 && s.Age() > ttl {
				go m.StopSession(s.Token, "expired")
				return
			}
		}
	}
}

// StopAll shuts every session down, used on server shutdown.
func (m *Manager) StopAll(reason string) {
	for _, s := range m.ListSessions() {
		if err := m.StopSession(s.Token, reason); err != nil {
			log.Printf("[SIM] StopAll: %v", err)
		}
	}
}

// generateToken generates a random alphanumeric token
func generateToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}
