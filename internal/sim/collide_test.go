package sim

import (
	"math"
	"testing"
)

func TestNarrowPhaseIdempotent(t *testing.T) {
	balls := randomBalls(t, 60, 7)
	byID := make(map[int]*Ball, len(balls))
	for _, b := range balls {
		byID[b.ID] = b
	}
	candidates := NewGrid(40).CandidatePairs(balls).Pairs()

	first := ConfirmCollisions(byID, candidates)
	second := ConfirmCollisions(byID, candidates)

	if len(first) != len(second) {
		t.Fatalf("collision counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("collision %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestTouchingCirclesConfirmed(t *testing.T) {
	// Exactly touching (overlap zero) counts as a collision.
	a := mustBall(t, 0, 10, 0, 0)
	b := mustBall(t, 1, 10, 20, 0)
	byID := map[int]*Ball{0: a, 1: b}

	collisions := ConfirmCollisions(byID, []Pair{NewPair(0, 1)})
	if len(collisions) != 1 {
		t.Fatalf("touching circles not confirmed, got %d collisions", len(collisions))
	}
	if collisions[0].Overlap != 0 {
		t.Errorf("overlap = %v, want 0", collisions[0].Overlap)
	}
}

func TestResolveEqualMassesSymmetric(t *testing.T) {
	// Radius 10 at (0,0) and (15,0): overlap 5. One pass with symmetric 0.5
	// coefficients moves each ball 2.5 directly apart along x, leaving them
	// at (-2.5,0) and (17.5,0), distance 20, overlap fully resolved.
	a := mustBall(t, 0, 10, 0, 0)
	b := mustBall(t, 1, 10, 15, 0)
	byID := map[int]*Ball{0: a, 1: b}

	collisions := ConfirmCollisions(byID, []Pair{NewPair(0, 1)})
	ResolveCollisions(byID, collisions, 1, 0.5, 0.5)

	if a.Pos.X != -2.5 || a.Pos.Y != 0 {
		t.Errorf("ball a at (%v, %v), want (-2.5, 0)", a.Pos.X, a.Pos.Y)
	}
	if b.Pos.X != 17.5 || b.Pos.Y != 0 {
		t.Errorf("ball b at (%v, %v), want (17.5, 0)", b.Pos.X, b.Pos.Y)
	}
	if d := a.Pos.Distance(b.Pos); d != 20 {
		t.Errorf("separation = %v, want 20", d)
	}
}

func TestResolveMassWeighting(t *testing.T) {
	// Mass equals radius, so the smaller ball yields more. The big ball's
	// share of the total correction is the small ball's mass fraction.
	big := mustBall(t, 0, 30, 0, 0)
	small := mustBall(t, 1, 10, 20, 0) // overlap 20
	byID := map[int]*Ball{0: big, 1: small}

	collisions := ConfirmCollisions(byID, []Pair{NewPair(0, 1)})
	ResolveCollisions(byID, collisions, 1, 0.5, 0.5)

	bigMove := math.Abs(big.Pos.X - 0)
	smallMove := math.Abs(small.Pos.X - 20)
	if bigMove >= smallMove {
		t.Errorf("big ball moved %v, small moved %v; lighter ball should yield more", bigMove, smallMove)
	}
	// alpha*overlap*2*mOther/total: big gets 0.5*20*2*10/40 = 5, small 15.
	if bigMove != 5 {
		t.Errorf("big ball moved %v, want 5", bigMove)
	}
	if smallMove != 15 {
		t.Errorf("small ball moved %v, want 15", smallMove)
	}
}

func TestResolveCoincidentBallsNoPanic(t *testing.T) {
	// Two bodies at the exact same point: zero direction, zero correction,
	// and no NaN leaking into positions.
	a := mustBall(t, 0, 10, 50, 50)
	b := mustBall(t, 1, 10, 50, 50)
	byID := map[int]*Ball{0: a, 1: b}

	collisions := ConfirmCollisions(byID, []Pair{NewPair(0, 1)})
	if len(collisions) != 1 {
		t.Fatalf("coincident pair should confirm, got %d", len(collisions))
	}

	ResolveCollisions(byID, collisions, 5, 0.5, 0.5)

	if !a.Pos.IsFinite() || !b.Pos.IsFinite() {
		t.Fatal("coincident resolution produced non-finite position")
	}
	if a.Pos != (Vec2{X: 50, Y: 50}) || b.Pos != (Vec2{X: 50, Y: 50}) {
		t.Errorf("coincident pair should not move: a=%+v b=%+v", a.Pos, b.Pos)
	}
}

func TestResolveChainRelaxesOverPasses(t *testing.T) {
	// Three balls overlapping in a row. Multiple passes should strictly
	// reduce total penetration compared to a single pass.
	penetration := func(balls []*Ball) float64 {
		total := 0.0
		for i := range balls {
			for j := i + 1; j < len(balls); j++ {
				if o := balls[i].Radius + balls[j].Radius - balls[i].Pos.Distance(balls[j].Pos); o > 0 {
					total += o
				}
			}
		}
		return total
	}

	build := func() ([]*Ball, map[int]*Ball) {
		balls := []*Ball{
			mustBall(t, 0, 10, 0, 0),
			mustBall(t, 1, 10, 12, 0),
			mustBall(t, 2, 10, 24, 0),
		}
		byID := map[int]*Ball{0: balls[0], 1: balls[1], 2: balls[2]}
		return balls, byID
	}

	ballsOne, byIDOne := build()
	collisions := ConfirmCollisions(byIDOne, []Pair{NewPair(0, 1), NewPair(1, 2)})
	ResolveCollisions(byIDOne, collisions, 1, 0.3, 0.3)
	afterOne := penetration(ballsOne)

	ballsFive, byIDFive := build()
	collisions = ConfirmCollisions(byIDFive, []Pair{NewPair(0, 1), NewPair(1, 2)})
	ResolveCollisions(byIDFive, collisions, 5, 0.3, 0.3)
	afterFive := penetration(ballsFive)

	if afterFive >= afterOne {
		t.Errorf("5 passes left penetration %v, 1 pass left %v; more passes should relax further", afterFive, afterOne)
	}
}

func TestResolveAsymmetricCoefficients(t *testing.T) {
	// Independent coefficients are honored as given, not equalized.
	a := mustBall(t, 0, 10, 0, 0)
	b := mustBall(t, 1, 10, 15, 0)
	byID := map[int]*Ball{0: a, 1: b}

	collisions := ConfirmCollisions(byID, []Pair{NewPair(0, 1)})
	ResolveCollisions(byID, collisions, 1, 0.5, 0.6)

	if a.Pos.X != -2.5 {
		t.Errorf("ball a moved to x=%v, want -2.5", a.Pos.X)
	}
	if b.Pos.X != 18 {
		t.Errorf("ball b moved to x=%v, want 18 (0.6 coefficient)", b.Pos.X)
	}
}

func TestResolveZeroIterationsIsNoOp(t *testing.T) {
	a := mustBall(t, 0, 10, 0, 0)
	b := mustBall(t, 1, 10, 15, 0)
	byID := map[int]*Ball{0: a, 1: b}

	collisions := ConfirmCollisions(byID, []Pair{NewPair(0, 1)})
	ResolveCollisions(byID, collisions, 0, 0.5, 0.5)

	if a.Pos.X != 0 || b.Pos.X != 15 {
		t.Errorf("zero iterations should not move balls: a.x=%v b.x=%v", a.Pos.X, b.Pos.X)
	}
}
