// Package sim is the core rigid-circle simulation: Verlet integration,
// spatial-hash broad phase, exact narrow phase, and iterative positional
// correction. It owns no window, renderer, or input state; hosts feed it
// balls and a time delta and read back positions and collision reports.
package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidConfig is returned by Config.Validate. A config that fails
// validation must not be used to run steps.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config carries everything a step needs beyond the balls themselves. World
// bounds and gravity are explicit here rather than package globals, which
// keeps steps deterministic and testable.
type Config struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Gravity is acceleration in world units/s²; +Y points down in the usual
	// screen orientation.
	Gravity Vec2 `json:"gravity"`
	// CellSize is the broad-phase grid cell size. Must exceed zero; broad
	// phase stays near-linear while diameters are small relative to it.
	CellSize float64 `json:"cell_size"`
	// BounceStiffness in (0,1] blends the unclamped Verlet prediction toward
	// the boundary-clamped one. 1 is a hard wall.
	BounceStiffness float64 `json:"bounce_stiffness"`
	// Iterations is the number of resolver passes per step.
	Iterations int `json:"iterations"`
	// CorrectionA and CorrectionB scale the per-ball positional correction.
	// They are independent; see ResolveCollisions.
	CorrectionA float64 `json:"correction_a"`
	CorrectionB float64 `json:"correction_b"`
	// MinY is the upper boundary (lowest allowed y). Unlike the other three
	// edges it is not radius-inset, and it may sit above the visible area.
	MinY float64 `json:"min_y"`
	// Mass derives ball mass from radius; nil means mass = radius.
	Mass MassFunc `json:"-"`
}

// DefaultConfig returns the stock sandbox tuning for a world of the given size.
func DefaultConfig(width, height float64) Config {
	return Config{
		Width:           width,
		Height:          height,
		Gravity:         Vec2{X: 0, Y: 1000},
		CellSize:        50,
		BounceStiffness: 0.9,
		Iterations:      5,
		CorrectionA:     0.5,
		CorrectionB:     0.5,
		MinY:            0,
	}
}

// Validate rejects configs that would make a step meaningless. It is meant
// to run once when the config is supplied, before any step.
func (c Config) Validate() error {
	if c.Width <= 0 || math.IsNaN(c.Width) || math.IsInf(c.Width, 0) {
		return fmt.Errorf("%w: width %v", ErrInvalidConfig, c.Width)
	}
	if c.Height <= 0 || math.IsNaN(c.Height) || math.IsInf(c.Height, 0) {
		return fmt.Errorf("%w: height %v", ErrInvalidConfig, c.Height)
	}
	if !c.Gravity.IsFinite() {
		return fmt.Errorf("%w: non-finite gravity", ErrInvalidConfig)
	}
	if c.CellSize <= 0 || math.IsNaN(c.CellSize) {
		return fmt.Errorf("%w: cell size %v (must be > 0)", ErrInvalidConfig, c.CellSize)
	}
	if c.BounceStiffness <= 0 || c.BounceStiffness > 1 || math.IsNaN(c.BounceStiffness) {
		return fmt.Errorf("%w: bounce stiffness %v (must be in (0,1])", ErrInvalidConfig, c.BounceStiffness)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidConfig, c.Iterations)
	}
	return nil
}

// Step advances the simulation one frame: integrate, broad phase, narrow
// phase, then resolver passes over the confirmed set. Balls are mutated in
// place; the returned collisions are the narrow-phase confirmations for this
// step. Step is deterministic in its inputs and keeps no state of its own —
// the ball slice carried between calls is the entire simulation state.
//
// Callers are expected to have validated cfg; Step does not re-check it.
func Step(balls []*Ball, dt float64, cfg Config) []Collision {
	Integrate(balls, dt, cfg)

	candidates := NewGrid(cfg.CellSize).CandidatePairs(balls).Pairs()

	// The pair set is unordered; fix an order so resolver passes apply
	// corrections identically on every run with the same input.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].A != candidates[j].A {
			return candidates[i].A < candidates[j].A
		}
		return candidates[i].B < candidates[j].B
	})

	byID := make(map[int]*Ball, len(balls))
	for _, b := range balls {
		byID[b.ID] = b
	}

	collisions := ConfirmCollisions(byID, candidates)
	ResolveCollisions(byID, collisions, cfg.Iterations, cfg.CorrectionA, cfg.CorrectionB)

	return collisions
}
