package noise

import "math"

// Classic 2D gradient noise based on Ken Perlin's permutation-table design.
// Produces values in the range [-1, 1].

// Gradient produces deterministic gradient noise from a seed.
// It is immutable after construction.
type Gradient struct {
	perm  [512]int
	grads [512][2]float64
}

// NewGradient creates a gradient noise source with a seeded permutation table.
func NewGradient(seed int64) *Gradient {
	g := &Gradient{}

	// Initialize with identity permutation.
	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle with seed-derived random.
	rng := newLCG(seed)
	for i := 255; i > 0; i-- {
		var r float64
		rng, r = rng.next()
		j := int(r * float64(i+1))
		if j > i {
			j = i
		}
		p[i], p[j] = p[j], p[i]
	}

	// Double the permutation table for wrapping.
	for i := 0; i < 512; i++ {
		g.perm[i] = p[i&255]
	}

	// Unit gradients evenly spaced by angle; the table wraps twice around the circle.
	for i := range g.grads {
		angle := float64(i) / 256 * 2 * math.Pi
		g.grads[i] = [2]float64{math.Cos(angle), math.Sin(angle)}
	}
	return g
}

// Sample returns 2D gradient noise at (x, y).
func (g *Gradient) Sample(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255

	x -= fx
	y -= fy

	u := fade(x)
	v := fade(y)

	a := g.perm[xi] + yi
	aa := g.perm[a]
	ab := g.perm[a+1]
	b := g.perm[xi+1] + yi
	ba := g.perm[b]
	bb := g.perm[b+1]

	g1 := g.grads[g.perm[aa]%512]
	g2 := g.grads[g.perm[ba]%512]
	g3 := g.grads[g.perm[ab]%512]
	g4 := g.grads[g.perm[bb]%512]

	return lerp(
		lerp(dot2(g1, x, y), dot2(g2, x-1, y), u),
		lerp(dot2(g3, x, y-1), dot2(g4, x-1, y-1), u),
		v,
	)
}

// lcg is a value-semantics linear congruential generator: next returns the
// advanced generator together with a float in [0, 1].
type lcg struct {
	state uint64
}

const (
	lcgModulus    = 1 << 31
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
)

func newLCG(seed int64) lcg {
	return lcg{state: uint64(seed) % lcgModulus}
}

func (l lcg) next() (lcg, float64) {
	l.state = (lcgMultiplier*l.state + lcgIncrement) % lcgModulus
	return l, float64(l.state) / float64(lcgModulus-1)
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3 curve.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func dot2(g [2]float64, x, y float64) float64 {
	return g[0]*x + g[1]*y
}
