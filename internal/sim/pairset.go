package sim

// Pair is an unordered pair of ball IDs in canonical order (A < B), so
// (a, b) and (b, a) are the same pair.
type Pair struct {
	A int
	B int
}

// NewPair canonicalizes the two IDs.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// PairSet is a deduplicated set of unordered ID pairs. It is rebuilt every
// step by the broad phase and discarded after resolution.
type PairSet struct {
	members map[Pair]struct{}
}

func NewPairSet() *PairSet {
	return &PairSet{members: make(map[Pair]struct{})}
}

// Add inserts the canonicalized pair. Self-pairs are ignored. Returns true if
// the pair was not already present.
func (s *PairSet) Add(a, b int) bool {
	if a == b {
		return false
	}
	p := NewPair(a, b)
	if _, ok := s.members[p]; ok {
		return false
	}
	s.members[p] = struct{}{}
	return true
}

func (s *PairSet) Contains(a, b int) bool {
	_, ok := s.members[NewPair(a, b)]
	return ok
}

func (s *PairSet) Len() int {
	return len(s.members)
}

// Pairs returns the members in unspecified order.
func (s *PairSet) Pairs() []Pair {
	out := make([]Pair, 0, len(s.members))
	for p := range s.members {
		out = append(out, p)
	}
	return out
}
