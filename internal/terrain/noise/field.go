package noise

import (
	"math"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Source produces continuous, deterministic 2D noise in [-1, 1].
type Source interface {
	Sample(x, y float64) float64
}

// Basis names the base noise source a Field layers octaves over.
type Basis string

const (
	BasisGradient Basis = "gradient"
	BasisSimplex  Basis = "simplex"
	BasisPerlin   Basis = "perlin"
)

// ParseBasis maps a settings string to a Basis. Unknown names fall back to gradient.
func ParseBasis(s string) Basis {
	switch Basis(strings.ToLower(strings.TrimSpace(s))) {
	case BasisSimplex:
		return BasisSimplex
	case BasisPerlin:
		return BasisPerlin
	default:
		return BasisGradient
	}
}

// Field layers multi-octave and ridged noise over a Source.
type Field struct {
	src Source
}

// New builds a Field for the given seed and basis.
func New(seed int64, basis Basis) *Field {
	switch basis {
	case BasisSimplex:
		return NewField(simplexSource{noise: opensimplex.New(seed)})
	case BasisPerlin:
		return NewField(perlinSource{p: perlin.NewPerlin(2, 2, 1, seed)})
	default:
		return NewField(NewGradient(seed))
	}
}

// NewField wraps an arbitrary source.
func NewField(src Source) *Field {
	return &Field{src: src}
}

// Sample returns single-octave noise at (x, y).
func (f *Field) Sample(x, y float64) float64 {
	return f.src.Sample(x, y)
}

// OctaveNoise layers octaves of noise, each at lacunarity× the previous
// frequency and persistence× the previous amplitude. The sum is normalized by
// the total amplitude so the result stays in [-1, 1]. Zero octaves yield 0.
func (f *Field) OctaveNoise(x, y float64, octaves int, persistence, lacunarity float64) float64 {
	var total, maxVal float64
	frequency := 1.0
	amplitude := 1.0

	for range octaves {
		total += f.src.Sample(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if maxVal <= 0 {
		return 0
	}
	return total / maxVal
}

// RidgedNoise folds each octave with 1-|n| and squares it, weighting by the
// previous octave's contribution clamped to [0, 1]. Low regions therefore stay
// quiet and ridges come out sharp and sparse. Result is in [0, 1].
func (f *Field) RidgedNoise(x, y float64, octaves int, lacunarity float64) float64 {
	var value float64
	amplitude := 1.0
	frequency := 1.0
	weight := 1.0

	for range octaves {
		n := f.src.Sample(x*frequency, y*frequency)
		n = 1 - math.Abs(n)
		n = n * n * weight
		weight = clamp(n*2, 0, 1)

		value += n * amplitude
		amplitude *= 0.5
		frequency *= lacunarity
	}
	return clamp(value, 0, 1)
}

type simplexSource struct {
	noise opensimplex.Noise
}

func (s simplexSource) Sample(x, y float64) float64 {
	return clamp(s.noise.Eval2(x, y), -1, 1)
}

// perlinSource adapts a single-octave go-perlin generator.
type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) Sample(x, y float64) float64 {
	return clamp(s.p.Noise2D(x, y), -1, 1)
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
