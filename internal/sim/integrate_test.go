package sim

import (
	"math"
	"testing"
)

func TestIntegrateGravityFromRest(t *testing.T) {
	// One ball at rest away from all boundaries: one step displaces it by
	// exactly dt² * gravity.
	cfg := DefaultConfig(800, 600)
	cfg.Gravity = Vec2{X: 0, Y: 1000}

	b := mustBall(t, 0, 10, 400, 300)
	Integrate([]*Ball{b}, 0.01, cfg)

	if b.Pos.X != 400 {
		t.Errorf("x moved to %v, want 400", b.Pos.X)
	}
	if got := b.Pos.Y - 300; math.Abs(got-0.1) > 1e-12 {
		t.Errorf("y displacement = %v, want 0.1", got)
	}
	if b.PrevPos != (Vec2{X: 400, Y: 300}) {
		t.Errorf("PrevPos = %+v, want the pre-step position", b.PrevPos)
	}
}

func TestIntegrateImplicitVelocityCarries(t *testing.T) {
	// Verlet momentum: with no gravity, a moving ball keeps moving.
	cfg := DefaultConfig(800, 600)
	cfg.Gravity = Vec2{}

	b := mustBall(t, 0, 10, 400, 300)
	b.PrevPos = Vec2{X: 398, Y: 300} // implicit velocity (2, 0) per step

	Integrate([]*Ball{b}, 0.016, cfg)
	if b.Pos.X != 402 {
		t.Errorf("x = %v, want 402", b.Pos.X)
	}
	Integrate([]*Ball{b}, 0.016, cfg)
	if b.Pos.X != 404 {
		t.Errorf("x = %v after second step, want 404", b.Pos.X)
	}
}

func TestIntegrateHardBoundaryContains(t *testing.T) {
	// With stiffness 1 every ball ends inside [r, w-r] x [minY, h-r], no
	// matter how hard it was heading out.
	cfg := DefaultConfig(800, 600)
	cfg.BounceStiffness = 1
	cfg.MinY = 0

	balls := []*Ball{
		mustBall(t, 0, 10, 5, 300),   // pushed into left wall
		mustBall(t, 1, 10, 795, 300), // pushed into right wall
		mustBall(t, 2, 10, 400, 595), // pushed into floor
		mustBall(t, 3, 10, 400, 2),   // pushed into ceiling
	}
	// Give each one a violent outward velocity.
	balls[0].PrevPos = Vec2{X: 105, Y: 300}
	balls[1].PrevPos = Vec2{X: 695, Y: 300}
	balls[2].PrevPos = Vec2{X: 400, Y: 495}
	balls[3].PrevPos = Vec2{X: 400, Y: 102}

	for step := 0; step < 10; step++ {
		Integrate(balls, 0.016, cfg)
		for _, b := range balls {
			if b.Pos.X < b.Radius || b.Pos.X > cfg.Width-b.Radius {
				t.Fatalf("step %d: ball %d x=%v outside [%v, %v]", step, b.ID, b.Pos.X, b.Radius, cfg.Width-b.Radius)
			}
			if b.Pos.Y < cfg.MinY || b.Pos.Y > cfg.Height-b.Radius {
				t.Fatalf("step %d: ball %d y=%v outside [%v, %v]", step, b.ID, b.Pos.Y, cfg.MinY, cfg.Height-b.Radius)
			}
		}
	}
}

func TestIntegrateSoftBoundaryApproachesUnclamped(t *testing.T) {
	// Away from boundaries the clamp never engages, so even a tiny stiffness
	// must reproduce the raw Verlet prediction.
	cfg := DefaultConfig(800, 600)
	cfg.BounceStiffness = 0.01
	cfg.Gravity = Vec2{X: 0, Y: 1000}

	b := mustBall(t, 0, 10, 400, 300)
	Integrate([]*Ball{b}, 0.01, cfg)

	if got := b.Pos.Y - 300; math.Abs(got-0.1) > 1e-12 {
		t.Errorf("free-fall displacement = %v with soft boundary, want 0.1", got)
	}
}

func TestIntegrateSoftBoundaryOvershoots(t *testing.T) {
	// A soft boundary lets the ball visibly pass the wall before pullback.
	cfg := DefaultConfig(800, 600)
	cfg.BounceStiffness = 0.1
	cfg.Gravity = Vec2{}

	b := mustBall(t, 0, 10, 790, 300)
	b.PrevPos = Vec2{X: 750, Y: 300} // heading right at 40 units/step

	Integrate([]*Ball{b}, 0.016, cfg)
	if b.Pos.X <= cfg.Width-b.Radius {
		t.Errorf("soft boundary should overshoot: x=%v, wall at %v", b.Pos.X, cfg.Width-b.Radius)
	}
}

func TestIntegrateLooseLowerBound(t *testing.T) {
	// MinY below zero lets a ball rise above the visible area before the
	// clamp engages.
	cfg := DefaultConfig(800, 600)
	cfg.BounceStiffness = 1
	cfg.MinY = -200
	cfg.Gravity = Vec2{}

	b := mustBall(t, 0, 10, 400, 50)
	b.PrevPos = Vec2{X: 400, Y: 150} // rising fast

	Integrate([]*Ball{b}, 0.016, cfg)
	if b.Pos.Y >= 0 {
		t.Errorf("ball should cross above y=0 with loose bound, got y=%v", b.Pos.Y)
	}
	if b.Pos.Y < cfg.MinY {
		t.Errorf("ball y=%v passed the configured lower bound %v", b.Pos.Y, cfg.MinY)
	}
}

func TestIntegrateBoundaryDampsImplicitVelocity(t *testing.T) {
	// Clamping position (not a stored velocity) shrinks pos - prev, which is
	// the implicit velocity, on wall contact.
	cfg := DefaultConfig(800, 600)
	cfg.BounceStiffness = 1
	cfg.Gravity = Vec2{}

	b := mustBall(t, 0, 10, 780, 300)
	b.PrevPos = Vec2{X: 700, Y: 300} // 80 units/step rightward

	Integrate([]*Ball{b}, 0.016, cfg)
	speedAfter := math.Abs(b.Pos.X - b.PrevPos.X)
	if speedAfter >= 80 {
		t.Errorf("implicit speed %v not damped by wall clamp", speedAfter)
	}
}
