package sim

import (
	"math/rand"
	"testing"
)

func mustBall(t *testing.T, id int, radius float64, x, y float64) *Ball {
	t.Helper()
	b, err := NewBall(id, radius, Vec2{X: x, Y: y}, nil)
	if err != nil {
		t.Fatalf("NewBall(%d): %v", id, err)
	}
	return b
}

func randomBalls(t *testing.T, n int, seed int64) []*Ball {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	balls := make([]*Ball, 0, n)
	for i := 0; i < n; i++ {
		balls = append(balls, mustBall(t, i, 4+rng.Float64()*12, rng.Float64()*800, rng.Float64()*600))
	}
	return balls
}

func TestCandidatePairsTwoBallScenario(t *testing.T) {
	// Two radius-10 balls at (0,0) and (15,0) with cell size 50: exactly one
	// candidate pair, and the narrow phase confirms overlap 5.
	a := mustBall(t, 0, 10, 0, 0)
	b := mustBall(t, 1, 10, 15, 0)

	pairs := NewGrid(50).CandidatePairs([]*Ball{a, b})
	if pairs.Len() != 1 {
		t.Fatalf("candidate pairs = %d, want 1", pairs.Len())
	}
	if !pairs.Contains(0, 1) {
		t.Fatal("expected candidate pair (0,1)")
	}

	byID := map[int]*Ball{0: a, 1: b}
	collisions := ConfirmCollisions(byID, pairs.Pairs())
	if len(collisions) != 1 {
		t.Fatalf("confirmed collisions = %d, want 1", len(collisions))
	}
	if collisions[0].Overlap != 5 {
		t.Errorf("overlap = %v, want 5", collisions[0].Overlap)
	}
}

func TestCandidatePairsNoSelfOrMirrored(t *testing.T) {
	balls := randomBalls(t, 120, 1)

	pairs := NewGrid(40).CandidatePairs(balls)
	for _, p := range pairs.Pairs() {
		if p.A == p.B {
			t.Fatalf("self-pair (%d,%d) emitted", p.A, p.B)
		}
		if p.A >= p.B {
			t.Fatalf("pair (%d,%d) not canonical", p.A, p.B)
		}
	}
}

func TestCandidatePairsOrderIndependent(t *testing.T) {
	balls := randomBalls(t, 80, 2)

	forward := NewGrid(40).CandidatePairs(balls)

	reversed := make([]*Ball, len(balls))
	for i, b := range balls {
		reversed[len(balls)-1-i] = b
	}
	backward := NewGrid(40).CandidatePairs(reversed)

	if forward.Len() != backward.Len() {
		t.Fatalf("pair counts differ: %d vs %d", forward.Len(), backward.Len())
	}
	for _, p := range forward.Pairs() {
		if !backward.Contains(p.A, p.B) {
			t.Errorf("pair (%d,%d) missing from reversed scan", p.A, p.B)
		}
	}
}

func TestConfirmedSubsetOfExhaustive(t *testing.T) {
	balls := randomBalls(t, 150, 3)
	byID := make(map[int]*Ball, len(balls))
	for _, b := range balls {
		byID[b.ID] = b
	}

	exhaustive := NewPairSet()
	for i := range balls {
		for j := i + 1; j < len(balls); j++ {
			a, b := balls[i], balls[j]
			if a.Radius+b.Radius-a.Pos.Distance(b.Pos) >= 0 {
				exhaustive.Add(a.ID, b.ID)
			}
		}
	}

	confirmed := ConfirmCollisions(byID, NewGrid(40).CandidatePairs(balls).Pairs())
	for _, c := range confirmed {
		if !exhaustive.Contains(c.A, c.B) {
			t.Errorf("confirmed (%d,%d) not in exhaustive overlap set", c.A, c.B)
		}
	}
}

func TestLargeCellMissesNothing(t *testing.T) {
	// With the cell much larger than any diameter, the grid-confirmed set
	// must equal the exhaustive overlap set.
	balls := randomBalls(t, 150, 4)
	byID := make(map[int]*Ball, len(balls))
	for _, b := range balls {
		byID[b.ID] = b
	}

	confirmed := NewPairSet()
	for _, c := range ConfirmCollisions(byID, NewGrid(500).CandidatePairs(balls).Pairs()) {
		confirmed.Add(c.A, c.B)
	}

	count := 0
	for i := range balls {
		for j := i + 1; j < len(balls); j++ {
			a, b := balls[i], balls[j]
			if a.Radius+b.Radius-a.Pos.Distance(b.Pos) >= 0 {
				count++
				if !confirmed.Contains(a.ID, b.ID) {
					t.Errorf("true overlap (%d,%d) missed", a.ID, b.ID)
				}
			}
		}
	}
	if confirmed.Len() != count {
		t.Errorf("confirmed %d pairs, exhaustive check found %d", confirmed.Len(), count)
	}
}
