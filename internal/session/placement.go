package session

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ballpit/backend/internal/sim"
)

// goldenRatioConjugate steps the hue wheel so consecutive balls land far
// apart on it no matter how many are drawn.
const goldenRatioConjugate = 0.6180339887498949

// HueSampler hands out well-spread hues. It owns its counter; two samplers
// never interfere, unlike a process-wide sample index.
type HueSampler struct {
	n int
}

func NewHueSampler() *HueSampler {
	return &HueSampler{}
}

// Next returns the next hue in [0,1).
func (h *HueSampler) Next() float64 {
	hue := math.Mod(float64(h.n)*goldenRatioConjugate, 1)
	h.n++
	return hue
}

// HexColor returns the next color as "#rrggbb" at fixed saturation/value.
func (h *HueSampler) HexColor() string {
	r, g, b := hsvToRGB(h.Next()*360, 0.65, 0.95)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

// Placer is the random placement policy used for new sessions: uniform
// radius in [MinRadius, MaxRadius], uniform position inside the world box
// inset by the radius. It owns its RNG so seeded sessions replay identically.
type Placer struct {
	rng       *rand.Rand
	cfg       sim.Config
	minRadius float64
	maxRadius float64
}

func NewPlacer(seed int64, cfg sim.Config, minRadius, maxRadius float64) *Placer {
	if minRadius <= 0 {
		minRadius = 5
	}
	if maxRadius < minRadius {
		maxRadius = minRadius
	}
	return &Placer{
		rng:       rand.New(rand.NewSource(seed)),
		cfg:       cfg,
		minRadius: minRadius,
		maxRadius: maxRadius,
	}
}

// Place implements sim.PlacementFunc.
func (p *Placer) Place(i int) (float64, sim.Vec2) {
	radius := p.minRadius + p.rng.Float64()*(p.maxRadius-p.minRadius)
	x := radius + p.rng.Float64()*(p.cfg.Width-2*radius)

	yLow := math.Max(p.cfg.MinY, radius)
	y := yLow + p.rng.Float64()*(p.cfg.Height-radius-yLow)

	return radius, sim.Vec2{X: x, Y: y}
}
