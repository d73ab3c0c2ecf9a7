package sim

// Integrate advances every ball one Verlet step with boundary containment.
//
// The unclamped prediction is 2*pos - prev + dt²*g. It is clamped to the
// world box — x to [r, width-r], y to [minY, height-r] — and the stored
// position is the blend mix(next, clamped, bounceStiffness). Stiffness 1
// gives a hard boundary; values near 0 let the ball visibly overshoot before
// being pulled back. MinY is configurable independently of the radius-inset
// pattern used on the other three edges, so the ceiling can sit above the
// visible area and delay the bounce.
//
// Clamping the position directly (instead of a velocity) also damps the
// implicit velocity on boundary contact, since velocity is pos - prev.
func Integrate(balls []*Ball, dt float64, cfg Config) {
	gdt2 := cfg.Gravity.Times(dt * dt)

	for _, b := range balls {
		next := b.Pos.Times(2).Minus(b.PrevPos).Plus(gdt2)

		clamped := Vec2{
			X: clamp(next.X, b.Radius, cfg.Width-b.Radius),
			Y: clamp(next.Y, cfg.MinY, cfg.Height-b.Radius),
		}

		b.PrevPos = b.Pos
		b.Pos = next.Mix(clamped, cfg.BounceStiffness)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
