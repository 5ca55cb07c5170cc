package shape

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Type is a terrain preset.
type Type int

const (
	Unknown Type = iota
	Plains
	Hills
	Mountains
	Desert
	Islands
	Valleys
)

var typeNames = map[Type]string{
	Unknown:   "unknown",
	Plains:    "plains",
	Hills:     "hills",
	Mountains: "mountains",
	Desert:    "desert",
	Islands:   "islands",
	Valleys:   "valleys",
}

// Types lists every known preset, in declaration order.
var Types = []Type{Plains, Hills, Mountains, Desert, Islands, Valleys}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a settings tag to a Type. Unrecognized tags return Unknown
// so settings written by newer versions still load.
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if t != Unknown && name == s {
			return t
		}
	}
	return Unknown
}

// Canonical shaping constants.
const (
	plainsScale  = 0.25
	plainsOffset = 0.05

	hillsBase      = 0.6
	hillsDetail    = 0.2
	hillsFrequency = 0.01

	mountainsBase      = 0.7
	mountainsRidge     = 0.3
	mountainsFrequency = 0.005

	desertBase       = 0.4
	desertDune       = 0.1
	desertFrequency1 = 0.008
	desertFrequency2 = 0.015

	islandsScale = 0.8

	valleysBase      = 0.5
	valleysDetail    = 0.2
	valleysFrequency = 0.003

	unknownAttenuation = 0.8
)

// Noise is the subset of the noise field the shaper samples.
type Noise interface {
	OctaveNoise(x, y float64, octaves int, persistence, lacunarity float64) float64
	RidgedNoise(x, y float64, octaves int, lacunarity float64) float64
}

// Shaper maps a normalized noise height to a terrain-specific contribution.
type Shaper struct {
	noise Noise
	log   *slog.Logger
}

// New creates a Shaper sampling secondary detail from noise.
func New(noise Noise, log *slog.Logger) *Shaper {
	return &Shaper{noise: noise, log: log}
}

// EdgeFactor is 1 at the grid center falling linearly to 0 at the corners.
// The center is (size-1)/2, the same one the lake carver uses, so all four
// corners reach exactly 0.
func EdgeFactor(x, y, size int) float64 {
	c := float64(size-1) * 0.5
	maxDist := math.Hypot(c, c)
	d := math.Hypot(float64(x)-c, float64(y)-c)
	return math.Max(0, math.Min(1, 1-d/maxDist))
}

// Shape adjusts height for cell (x, y) of a size×size grid. If a branch
// panics, the raw height is returned unchanged.
func (s *Shaper) Shape(height float64, t Type, x, y, size int) (out float64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("shape cell failed, using raw height",
				"terrain", t.String(),
				"x", x,
				"y", y,
				"panic", r,
			)
			out = height
		}
	}()

	fx, fy := float64(x), float64(y)

	switch t {
	case Plains:
		return height*plainsScale + plainsOffset

	case Hills:
		n := s.noise.OctaveNoise(fx*hillsFrequency, fy*hillsFrequency, 3, 0.5, 1.8)
		return height*hillsBase + math.Abs(n)*hillsDetail

	case Mountains:
		r := s.noise.RidgedNoise(fx*mountainsFrequency, fy*mountainsFrequency, 4, 2.0)
		return height*mountainsBase + r*mountainsRidge

	case Desert:
		d1 := s.noise.OctaveNoise(fx*desertFrequency1, fy*desertFrequency1, 3, 0.6, 2.2)
		d2 := s.noise.OctaveNoise(fx*desertFrequency2, fy*desertFrequency2, 2, 0.4, 1.8)
		return height*desertBase + (math.Abs(d1)+math.Abs(d2))*desertDune

	case Islands:
		return height * EdgeFactor(x, y, size) * islandsScale

	case Valleys:
		n := s.noise.OctaveNoise(fx*valleysFrequency, fy*valleysFrequency, 2, 0.7, 2.0)
		return height*valleysBase + math.Sin(n*math.Pi)*valleysDetail

	default:
		return height * unknownAttenuation
	}
}
