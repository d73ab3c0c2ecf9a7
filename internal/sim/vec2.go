package sim

import "math"

// Vec2 is a 2D vector. Values are plain float64s; all operations return new
// vectors rather than mutating the receiver.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) Distance(o Vec2) float64 {
	dx := o.X - v.X
	dy := o.Y - v.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Normalize returns the unit vector in the direction of v. A zero-length
// vector normalizes to the zero vector: two coincident bodies produce a zero
// separation direction for that pass instead of a division error.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	// Divide components directly; multiplying by the reciprocal can be a
	// ULP off (Normalize(3,-4).X would not be exactly 0.6).
	return Vec2{X: v.X / m, Y: v.Y / m}
}

// Mix returns the linear blend (1-t)*v + t*o. t is not clamped, so callers
// outside [0,1] get extrapolation.
func (v Vec2) Mix(o Vec2, t float64) Vec2 {
	return Vec2{
		X: (1-t)*v.X + t*o.X,
		Y: (1-t)*v.Y + t*o.Y,
	}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
