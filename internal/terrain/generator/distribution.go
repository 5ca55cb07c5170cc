package generator

import "strings"

// Distribution remaps a normalized height before contrast is applied.
type Distribution int

const (
	// Linear leaves heights unchanged.
	Linear Distribution = iota
	// Lowland biases area toward low elevations: most of the map stays near
	// sea level and peaks are rare.
	Lowland
)

// ParseDistribution maps a settings tag to a Distribution; unknown tags are Linear.
func ParseDistribution(s string) Distribution {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lowland":
		return Lowland
	default:
		return Linear
	}
}

func (d Distribution) String() string {
	if d == Lowland {
		return "lowland"
	}
	return "linear"
}

// lowlandCurve is a continuous, monotonic four-segment piecewise-linear map.
var lowlandCurve = [...][2]float64{
	{0, 0},
	{0.4, 0.2},
	{0.7, 0.45},
	{0.9, 0.75},
	{1, 1},
}

// Apply maps h, clamped to [0, 1], through the distribution.
func (d Distribution) Apply(h float64) float64 {
	h = clamp01(h)
	if d != Lowland {
		return h
	}
	for i := 1; i < len(lowlandCurve); i++ {
		lo, hi := lowlandCurve[i-1], lowlandCurve[i]
		if h <= hi[0] {
			t := (h - lo[0]) / (hi[0] - lo[0])
			return lo[1] + t*(hi[1]-lo[1])
		}
	}
	return 1
}
