package water

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

// Type is a water feature kind.
type Type int

const (
	None Type = iota
	Lake
	River
	Ocean
	CustomRiver
)

var typeNames = map[Type]string{
	None:        "none",
	Lake:        "lake",
	River:       "river",
	Ocean:       "ocean",
	CustomRiver: "custom-river",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a settings tag to a Type. ok is false for unrecognized tags,
// which are treated as None.
func ParseType(s string) (t Type, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, true
	}
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return None, false
}

// Spec describes the water feature to carve.
type Spec struct {
	Type  Type
	Level float64
	River *RiverPath // used by CustomRiver only
}

// Feature constants, as fractions of the grid size or the water level.
const (
	lakeRadius     = 0.25
	lakeDepth      = 0.5
	riverCenter    = 0.3
	riverAmplitude = 0.2
	riverPeriods   = 3
	riverHalfWidth = 0.05
	riverDepth     = 0.8
	oceanBand      = 0.2

	customMinDepth = 0.25
	customMaxDepth = 0.6
	customFloor    = 0.1
	customBlend    = 0.85
	// samplesPerCell is the interpolation density along a custom river segment.
	samplesPerCell = 1.5
	// maxPathReach bounds how far outside the grid (in grid sizes) a path
	// point may lie before its segments are treated as malformed.
	maxPathReach = 4
)

// Carver lowers terrain toward a water level.
type Carver struct {
	log *slog.Logger
}

// New creates a Carver.
func New(log *slog.Logger) *Carver {
	return &Carver{log: log}
}

// Apply returns a carved copy of h; h itself is never modified. No cell of the
// result is higher than the same cell of h.
func (c *Carver) Apply(h *heightmap.Heightmap, spec Spec) *heightmap.Heightmap {
	out := h.Clone()
	level := spec.Level
	if math.IsNaN(level) || math.IsInf(level, 0) {
		c.log.Warn("invalid water level, skipping water", "level", level)
		return out
	}
	level = math.Max(0, level)

	switch spec.Type {
	case None:
	case Lake:
		c.guard("lake", func() { carveLake(out, level) })
	case River:
		c.guard("river", func() { carveRiver(out, level) })
	case Ocean:
		c.guard("ocean", func() { carveOcean(out, level) })
	case CustomRiver:
		c.carveCustomRiver(out, level, spec.River)
	default:
		c.log.Warn("unknown water type, skipping water", "type", spec.Type.String())
	}
	return out
}

// guard runs fn, converting a panic into a log entry. Cells already written
// by fn stay written.
func (c *Carver) guard(feature string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("water carving aborted", "feature", feature, "panic", r)
		}
	}()
	fn()
}

// lower sets cell (x, y) to target if that lowers it.
func lower(h *heightmap.Heightmap, x, y int, target float64) {
	i := y*h.Size + x
	if target < h.Cells[i] {
		h.Cells[i] = target
	}
}

// carveLake digs a circular depression at the grid center, deepest in the
// middle and rising linearly to the water level at the rim.
func carveLake(h *heightmap.Heightmap, level float64) {
	size := h.Size
	center := float64(size-1) * 0.5
	radius := float64(size) * lakeRadius

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-center, float64(y)-center)
			if d >= radius {
				continue
			}
			factor := math.Max(0, 1-d/radius)
			depth := level * factor * lakeDepth
			lower(h, x, y, math.Max(0, level-depth))
		}
	}
}

// carveRiver cuts a sinusoidal channel running top to bottom.
func carveRiver(h *heightmap.Heightmap, level float64) {
	size := h.Size
	fs := float64(size)
	halfWidth := fs * riverHalfWidth

	for y := 0; y < size; y++ {
		cx := fs*riverCenter + math.Sin(float64(y)/fs*2*math.Pi*riverPeriods)*fs*riverAmplitude
		for x := 0; x < size; x++ {
			d := math.Abs(float64(x) - cx)
			if d >= halfWidth {
				continue
			}
			factor := math.Max(0, 1-d/halfWidth)
			depth := level * factor * riverDepth
			lower(h, x, y, math.Max(0, level-depth))
		}
	}
}

// carveOcean sinks a band along the x=0 edge, deepest at the edge.
func carveOcean(h *heightmap.Heightmap, level float64) {
	size := h.Size
	band := float64(size) * oceanBand

	for y := 0; y < size; y++ {
		for x := 0; float64(x) < band && x < size; x++ {
			factor := math.Max(0, 1-float64(x)/band)
			depth := level * factor
			lower(h, x, y, math.Max(0, level-depth))
		}
	}
}

// Mask marks every cell at or below level.
func Mask(h *heightmap.Heightmap, level float64) []bool {
	m := make([]bool, len(h.Cells))
	for i, v := range h.Cells {
		m[i] = v <= level
	}
	return m
}

// Coverage returns the fraction of cells at or below level.
func Coverage(h *heightmap.Heightmap, level float64) float64 {
	if h == nil || len(h.Cells) == 0 {
		return 0
	}
	n := 0
	for _, wet := range Mask(h, level) {
		if wet {
			n++
		}
	}
	return float64(n) / float64(len(h.Cells))
}
