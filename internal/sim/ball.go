package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBall is returned when a ball fails validation at construction
// time. Invalid balls must never enter the simulation.
var ErrInvalidBall = errors.New("invalid ball")

// MassFunc derives a ball's mass from its radius. The default sets mass
// equal to radius, so a ball is exactly as massive as it is large. That is
// unusual but deliberate; supply a different MassFunc to change it.
type MassFunc func(radius float64) float64

// MassFromRadius is the default MassFunc: mass = radius.
func MassFromRadius(radius float64) float64 {
	return radius
}

// Ball is a single rigid circle. Velocity is not stored; it is implicit in
// Pos - PrevPos, which is what makes Verlet integration and boundary clamping
// interact correctly.
type Ball struct {
	ID      int     `json:"id"`
	Radius  float64 `json:"radius"`
	Mass    float64 `json:"mass"`
	Pos     Vec2    `json:"position"`
	PrevPos Vec2    `json:"previous_position"`
}

// NewBall validates and builds a ball at rest (PrevPos == Pos). mass may be
// nil, in which case MassFromRadius applies.
func NewBall(id int, radius float64, pos Vec2, mass MassFunc) (*Ball, error) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: ball %d has radius %v", ErrInvalidBall, id, radius)
	}
	if !pos.IsFinite() {
		return nil, fmt.Errorf("%w: ball %d has non-finite position (%v, %v)", ErrInvalidBall, id, pos.X, pos.Y)
	}
	if mass == nil {
		mass = MassFromRadius
	}
	m := mass(radius)
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return nil, fmt.Errorf("%w: ball %d has mass %v", ErrInvalidBall, id, m)
	}
	return &Ball{ID: id, Radius: radius, Mass: m, Pos: pos, PrevPos: pos}, nil
}

// PlacementFunc supplies the radius and position for the i-th ball. Placement
// policy (random, clustered, whatever) is the host's business; the core only
// validates what comes back.
type PlacementFunc func(i int) (radius float64, pos Vec2)

// Populate builds count balls using the given placement policy, rejecting the
// whole batch if any placement is invalid.
func Populate(count int, place PlacementFunc, mass MassFunc) ([]*Ball, error) {
	balls := make([]*Ball, 0, count)
	for i := 0; i < count; i++ {
		radius, pos := place(i)
		b, err := NewBall(i, radius, pos, mass)
		if err != nil {
			return nil, err
		}
		balls = append(balls, b)
	}
	return balls, nil
}
