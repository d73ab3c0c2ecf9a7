package sim

// Collision is a confirmed overlap between two balls, produced by the narrow
// phase and consumed by the resolver. Overlap is the penetration depth at
// confirmation time.
type Collision struct {
	A       int     `json:"a"`
	B       int     `json:"b"`
	Overlap float64 `json:"overlap"`
}

// ConfirmCollisions runs the narrow phase: for each candidate pair, an exact
// circle-overlap test. It never rejects a true overlap; touching circles
// (overlap exactly zero) count as colliding. The output order follows the
// candidate order, and the same candidates against the same positions always
// produce the same list.
func ConfirmCollisions(byID map[int]*Ball, candidates []Pair) []Collision {
	collisions := make([]Collision, 0, len(candidates))
	for _, p := range candidates {
		a, b := byID[p.A], byID[p.B]
		overlap := a.Radius + b.Radius - a.Pos.Distance(b.Pos)
		if overlap >= 0 {
			collisions = append(collisions, Collision{A: a.ID, B: b.ID, Overlap: overlap})
		}
	}
	return collisions
}

// ResolveCollisions pushes overlapping balls apart with iterative positional
// correction. The confirmed list is fixed for the whole call; each pass
// recomputes overlap and direction from the current positions, so chains of
// overlapping balls relax gradually across passes instead of needing a full
// constraint solve.
//
// Per collision, with d = normalize(posB - posA) and w = m_other/(mA+mB):
//
//	posA -= alphaA * d * overlap * 2w_B
//	posB += alphaB * d * overlap * 2w_A
//
// The weight is normalized (the factor 2) so an equal-mass pair with
// alphaA = alphaB = 0.5 separates exactly in one pass. The two coefficients
// are independent on purpose: asymmetric values inject or remove energy,
// which some scenes want. Pairs at numerically identical positions get a
// zero direction and no correction that pass.
//
// Corrections are applied sequentially within a pass; collisions that share
// a ball see each other's updates immediately.
func ResolveCollisions(byID map[int]*Ball, collisions []Collision, iterations int, alphaA, alphaB float64) {
	for pass := 0; pass < iterations; pass++ {
		for _, c := range collisions {
			a, b := byID[c.A], byID[c.B]

			overlap := a.Radius + b.Radius - a.Pos.Distance(b.Pos)
			if overlap < 0 {
				continue
			}

			d := b.Pos.Minus(a.Pos).Normalize()
			total := a.Mass + b.Mass

			a.Pos = a.Pos.Minus(d.Times(alphaA * overlap * 2 * b.Mass / total))
			b.Pos = b.Pos.Plus(d.Times(alphaB * overlap * 2 * a.Mass / total))
		}
	}
}
