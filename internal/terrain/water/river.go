package water

import (
	"math"

	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

// Point is a position in heightmap coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// RiverPath is a free-hand river: an ordered polyline and a carving radius,
// both in grid cells.
type RiverPath struct {
	Points []Point `json:"path" yaml:"path"`
	Width  float64 `json:"width" yaml:"width"`
}

// carveCustomRiver carves along path segment by segment, in path order. A
// malformed segment is skipped; one that panics leaves the rest of the
// path uncarved without undoing cells already lowered.
func (c *Carver) carveCustomRiver(h *heightmap.Heightmap, level float64, path *RiverPath) {
	if path == nil || len(path.Points) < 2 {
		c.log.Debug("custom river has fewer than two points, nothing to carve")
		return
	}
	if math.IsNaN(path.Width) || path.Width <= 0 || math.IsInf(path.Width, 0) {
		c.log.Warn("invalid custom river width, skipping river", "width", path.Width)
		return
	}

	radius := int(math.Round(path.Width))
	if radius < 1 {
		radius = 1
	}
	if radius > h.Size {
		radius = h.Size
	}

	bed := riverBed{
		level:    level,
		minDepth: level * customMinDepth,
		maxDepth: level * customMaxDepth,
		floor:    level * customFloor,
		radius:   radius,
	}
	reach := float64(h.Size * maxPathReach)

	for i := 0; i+1 < len(path.Points); i++ {
		a, b := path.Points[i], path.Points[i+1]
		if !a.finite() || !b.finite() || !withinReach(a, reach) || !withinReach(b, reach) {
			c.log.Warn("skipping malformed river segment", "index", i, "from", a, "to", b)
			continue
		}
		if !c.carveSegment(h, a, b, bed) {
			return
		}
	}
}

// carveSegment reports false if carving panicked.
func (c *Carver) carveSegment(h *heightmap.Heightmap, a, b Point, bed riverBed) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("custom river carving aborted", "from", a, "to", b, "panic", r)
			ok = false
		}
	}()

	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	steps := max(1, int(math.Ceil(dist*samplesPerCell)))

	for step := 0; step <= steps; step++ {
		t := float64(step) / float64(steps)
		x := int(math.Round(a.X + (b.X-a.X)*t))
		y := int(math.Round(a.Y + (b.Y-a.Y)*t))
		bed.carveAt(h, x, y)
	}
	return true
}

type riverBed struct {
	level    float64
	minDepth float64
	maxDepth float64
	floor    float64
	radius   int
}

// carveAt blends every cell within radius of (cx, cy) toward the river bed,
// most strongly at the center. Cells are only ever lowered.
func (r riverBed) carveAt(h *heightmap.Heightmap, cx, cy int) {
	rf := float64(r.radius)
	for dy := -r.radius; dy <= r.radius; dy++ {
		for dx := -r.radius; dx <= r.radius; dx++ {
			px, py := cx+dx, cy+dy
			if !h.InBounds(px, py) {
				continue
			}
			d := math.Hypot(float64(dx), float64(dy))
			if d > rf {
				continue
			}

			s := smoothstep(math.Max(0, 1-d/rf))
			depth := r.minDepth + (r.maxDepth-r.minDepth)*s
			target := math.Max(r.level-depth, r.floor)

			cur := h.At(px, py)
			if cur > target {
				blend := s * customBlend
				h.Set(px, py, cur*(1-blend)+target*blend)
			}
		}
	}
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func withinReach(p Point, reach float64) bool {
	return math.Abs(p.X) <= reach && math.Abs(p.Y) <= reach
}

// ScalePath converts a path captured on a displaySize×displaySize surface
// into grid coordinates for a gridSize grid. Coordinates are floored; the
// width is scaled by the same factor and kept at least one cell.
func ScalePath(p RiverPath, displaySize, gridSize int) RiverPath {
	if displaySize <= 0 || gridSize <= 0 {
		return clonePath(p)
	}
	f := float64(gridSize) / float64(displaySize)

	out := RiverPath{
		Points: make([]Point, len(p.Points)),
		Width:  math.Max(1, math.Floor(p.Width*f)),
	}
	for i, pt := range p.Points {
		out.Points[i] = Point{X: math.Floor(pt.X * f), Y: math.Floor(pt.Y * f)}
	}
	return out
}

// SmoothPath replaces every interior point with the mean of itself and its
// two neighbors. Endpoints are kept; paths shorter than three points are
// returned as copies.
func SmoothPath(p RiverPath) RiverPath {
	if len(p.Points) < 3 {
		return clonePath(p)
	}
	out := RiverPath{Points: make([]Point, len(p.Points)), Width: p.Width}
	out.Points[0] = p.Points[0]
	for i := 1; i < len(p.Points)-1; i++ {
		prev, cur, next := p.Points[i-1], p.Points[i], p.Points[i+1]
		out.Points[i] = Point{
			X: (prev.X + cur.X + next.X) / 3,
			Y: (prev.Y + cur.Y + next.Y) / 3,
		}
	}
	out.Points[len(p.Points)-1] = p.Points[len(p.Points)-1]
	return out
}

func clonePath(p RiverPath) RiverPath {
	return RiverPath{Points: append([]Point(nil), p.Points...), Width: p.Width}
}
