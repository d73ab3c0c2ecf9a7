package sim

import "math"

// cellKey identifies one grid cell. A structured key with value equality
// avoids the string-concatenation ambiguity of composite keys like "1,2"
// vs "12," and costs nothing to hash.
type cellKey struct {
	X int
	Y int
}

// Grid is the spatial hash broad phase. Buckets live only for the duration of
// one CandidatePairs call; the map is reallocated per scan rather than
// carried between steps.
type Grid struct {
	cellSize float64
}

func NewGrid(cellSize float64) *Grid {
	return &Grid{cellSize: cellSize}
}

// CandidatePairs scans the balls and returns the deduplicated set of pairs
// whose bounding boxes share at least one grid cell. Each ball's bbox
// (pos ± radius) is floor-divided into an inclusive cell range; before the
// ball is appended to a bucket it is paired with every ball already resident
// there, so shared-cell repeats collapse in the PairSet and the result does
// not depend on iteration order.
func (g *Grid) CandidatePairs(balls []*Ball) *PairSet {
	pairs := NewPairSet()
	buckets := make(map[cellKey][]*Ball)

	for _, b := range balls {
		minX := int(math.Floor((b.Pos.X - b.Radius) / g.cellSize))
		maxX := int(math.Floor((b.Pos.X + b.Radius) / g.cellSize))
		minY := int(math.Floor((b.Pos.Y - b.Radius) / g.cellSize))
		maxY := int(math.Floor((b.Pos.Y + b.Radius) / g.cellSize))

		for cx := minX; cx <= maxX; cx++ {
			for cy := minY; cy <= maxY; cy++ {
				key := cellKey{X: cx, Y: cy}
				for _, resident := range buckets[key] {
					pairs.Add(resident.ID, b.ID)
				}
				buckets[key] = append(buckets[key], b)
			}
		}
	}

	return pairs
}
