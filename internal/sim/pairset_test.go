package sim

import "testing"

func TestPairSetCanonicalization(t *testing.T) {
	s := NewPairSet()

	if !s.Add(7, 3) {
		t.Error("first insert of (7,3) should report new")
	}
	if s.Add(3, 7) {
		t.Error("(3,7) should collapse onto (7,3)")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if !s.Contains(7, 3) || !s.Contains(3, 7) {
		t.Error("Contains should match either orientation")
	}
}

func TestPairSetRejectsSelfPair(t *testing.T) {
	s := NewPairSet()
	if s.Add(5, 5) {
		t.Error("self-pair should be rejected")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after self-pair, want 0", s.Len())
	}
}

func TestPairSetPairsAreCanonical(t *testing.T) {
	s := NewPairSet()
	s.Add(9, 2)
	s.Add(1, 4)

	for _, p := range s.Pairs() {
		if p.A >= p.B {
			t.Errorf("pair (%d,%d) not in canonical order", p.A, p.B)
		}
	}
}
