package session

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ballpit/backend/internal/sim"
)

// SessionStatus represents the lifecycle state of a sandbox session
type SessionStatus string

const (
	StatusRunning SessionStatus = "RUNNING"
	StatusStopped SessionStatus = "STOPPED"
)

// BallView is the renderer-facing slice of a ball: position, size, color.
// Renderers never mutate simulation state; they only read frames.
type BallView struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

// Frame is one tick's broadcast payload.
type Frame struct {
	Type       string          `json:"type"`
	Token      string          `json:"token"`
	Tick       int64           `json:"tick"`
	Balls      []BallView      `json:"balls"`
	Collisions []sim.Collision `json:"collisions"`
}

// Session is one live sandbox: a ball set, its tuning, and the colors the
// session assigned to each ball. All mutable state sits behind mu; the tick
// loop and owner commands both go through it.
type Session struct {
	Token   string
	SceneID int
	RunID   int

	mu        sync.Mutex
	cfg       sim.Config
	balls     []*sim.Ball
	colors    map[int]string
	nextID    int
	sampler   *HueSampler
	placer    *Placer
	tick      int64
	collTotal int64
	status    SessionStatus

	CreatedAt time.Time
	maxBalls  int

	stop     chan struct{}
	stopOnce sync.Once
}

func newSession(token string, sceneID int, cfg sim.Config, placer *Placer, maxBalls int) *Session {
	return &Session{
		Token:     token,
		SceneID:   sceneID,
		cfg:       cfg,
		colors:    make(map[int]string),
		sampler:   NewHueSampler(),
		placer:    placer,
		status:    StatusRunning,
		CreatedAt: time.Now(),
		maxBalls:  maxBalls,
		stop:      make(chan struct{}),
	}
}

// populate replaces the ball set. Placement failures reject the whole batch
// and leave the previous set untouched.
func (s *Session) populate(count int) error {
	if count < 0 || count > s.maxBalls {
		return fmt.Errorf("ball count %d out of range [0, %d]", count, s.maxBalls)
	}
	balls, err := sim.Populate(count, s.placer.Place, s.cfg.Mass)
	if err != nil {
		return err
	}
	s.balls = balls
	s.colors = make(map[int]string)
	for _, b := range balls {
		s.colors[b.ID] = s.sampler.HexColor()
	}
	s.nextID = count
	return nil
}

// AddBalls drops n new balls into the running session.
func (s *Session) AddBalls(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return fmt.Errorf("ball count must be positive")
	}
	if len(s.balls)+n > s.maxBalls {
		return fmt.Errorf("session is limited to %d balls", s.maxBalls)
	}

	for i := 0; i < n; i++ {
		radius, pos := s.placer.Place(s.nextID)
		b, err := sim.NewBall(s.nextID, radius, pos, s.cfg.Mass)
		if err != nil {
			return err
		}
		s.balls = append(s.balls, b)
		s.colors[b.ID] = s.sampler.HexColor()
		s.nextID++
	}
	return nil
}

// Reset throws the current balls away and places a fresh set. Balls are
// never removed one by one mid-session; reset replaces the whole set.
func (s *Session) Reset(count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.populate(count)
}

// SetGravity retunes gravity without touching anything else.
func (s *Session) SetGravity(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := sim.Vec2{X: x, Y: y}
	if !g.IsFinite() {
		return fmt.Errorf("gravity must be finite")
	}
	s.cfg.Gravity = g
	return nil
}

// step advances the simulation one tick and returns the frame to broadcast.
func (s *Session) step(dt float64) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	collisions := sim.Step(s.balls, dt, s.cfg)
	s.tick++
	s.collTotal += int64(len(collisions))

	return s.frameLocked(collisions)
}

func (s *Session) frameLocked(collisions []sim.Collision) Frame {
	views := make([]BallView, 0, len(s.balls))
	for _, b := range s.balls {
		views = append(views, BallView{
			ID:     b.ID,
			X:      b.Pos.X,
			Y:      b.Pos.Y,
			Radius: b.Radius,
			Color:  s.colors[b.ID],
		})
	}
	return Frame{
		Type:       "frame",
		Token:      s.Token,
		Tick:       s.tick,
		Balls:      views,
		Collisions: collisions,
	}
}

// Snapshot returns the current frame without advancing the simulation.
func (s *Session) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked(nil)
}

// Stats returns tick and collision counters plus ball count.
func (s *Session) Stats() (tick, collisions int64, ballCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick, s.collTotal, len(s.balls)
}

// Status returns the lifecycle state.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Config returns a copy of the current tuning.
func (s *Session) Config() sim.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Session) markStopped() {
	s.mu.Lock()
	s.status = StatusStopped
	s.mu.Unlock()
}

// Age reports how long the session has existed.
func (s *Session) Age() time.Duration {
	return time.Since(s.CreatedAt)
}

// tickInterval converts a tick rate into a ticker period, clamped to
// something sane if the config is silly.
func tickInterval(rate int) time.Duration {
	if rate <= 0 || rate > 1000 {
		rate = 60
	}
	return time.Duration(math.Round(float64(time.Second) / float64(rate)))
}
