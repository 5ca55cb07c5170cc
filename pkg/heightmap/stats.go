package heightmap

import "math"

// Stats summarizes a heightmap.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Size int     `json:"size"`
}

// ComputeStats scans h once. ok is false for a nil or empty grid.
func ComputeStats(h *Heightmap) (s Stats, ok bool) {
	if h == nil || len(h.Cells) == 0 {
		return Stats{}, false
	}

	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)
	var sum float64
	for _, v := range h.Cells {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(len(h.Cells))
	s.Size = h.Size
	return s, true
}
