package generator

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/noise"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/shape"
	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

// fallbackHeight is used when base noise sampling fails for a cell.
const fallbackHeight = 0.5

// Builder turns settings into a heightmap and remembers the last result.
type Builder struct {
	log     *slog.Logger
	workers int

	mu   sync.RWMutex
	last *heightmap.Heightmap
}

// New creates a Builder that fans rows out over GOMAXPROCS workers.
func New(log *slog.Logger) *Builder {
	return &Builder{
		log:     log,
		workers: runtime.GOMAXPROCS(0),
	}
}

// pass holds the per-call immutable inputs shared by all row workers.
type pass struct {
	cfg     config.Config
	field   *noise.Field
	shaper  *shape.Shaper
	terrain shape.Type
	curve   Distribution
	log     *slog.Logger
}

// Build generates a heightmap from cfg. The only error is a grid size <= 2.
func (b *Builder) Build(cfg config.Config) (*heightmap.Heightmap, error) {
	start := time.Now()
	cfg = cfg.Normalized()

	h, err := heightmap.New(cfg.Size)
	if err != nil {
		b.setLast(nil)
		return nil, fmt.Errorf("build heightmap: %w", err)
	}

	field := noise.New(cfg.Seed, noise.ParseBasis(cfg.NoiseBasis))
	p := &pass{
		cfg:     cfg,
		field:   field,
		shaper:  shape.New(field, b.log),
		terrain: shape.ParseType(cfg.TerrainType),
		curve:   ParseDistribution(cfg.Distribution),
		log:     b.log,
	}
	if p.terrain == shape.Unknown {
		b.log.Warn("unknown terrain type, using attenuated base noise", "terrain", cfg.TerrainType)
	}

	// Rows only read immutable inputs and write their own slice.
	var g errgroup.Group
	g.SetLimit(b.workers)
	for y := 0; y < h.Size; y++ {
		g.Go(func() error {
			p.fillRow(h.Row(y), y)
			return nil
		})
	}
	_ = g.Wait()

	if cfg.Smoothing > 0 {
		h = Smooth(h, cfg.Smoothing, cfg.SmoothCenterWeight, b.workers)
	}

	b.setLast(h.Clone())
	b.log.Debug("build heightmap",
		"size", cfg.Size,
		"terrain", p.terrain.String(),
		"basis", cfg.NoiseBasis,
		"distribution", p.curve.String(),
		"smoothing", cfg.Smoothing,
		"elapsed", time.Since(start),
	)
	return h, nil
}

// Last returns a copy of the most recently built grid, or nil.
func (b *Builder) Last() *heightmap.Heightmap {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return nil
	}
	return b.last.Clone()
}

// Stats scans the most recently built grid. ok is false before the first
// successful Build.
func (b *Builder) Stats() (heightmap.Stats, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return heightmap.ComputeStats(b.last)
}

func (b *Builder) setLast(h *heightmap.Heightmap) {
	b.mu.Lock()
	b.last = h
	b.mu.Unlock()
}

func (p *pass) fillRow(row []float64, y int) {
	size := len(row)
	for x := range row {
		h := p.baseHeight(x, y)
		h = p.shaper.Shape(h, p.terrain, x, y, size)
		h = p.curve.Apply(h)
		h = math.Pow(clamp01(h), p.cfg.Contrast)
		row[x] = math.Max(0, h*p.cfg.MaxHeight)
	}
}

// baseHeight samples octave noise at (x, y) remapped from [-1, 1] to [0, 1].
func (p *pass) baseHeight(x, y int) (h float64) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("base noise failed, using fallback height", "x", x, "y", y, "panic", r)
			h = fallbackHeight
		}
	}()

	n := p.field.OctaveNoise(
		float64(x)*p.cfg.Scale,
		float64(y)*p.cfg.Scale,
		p.cfg.Octaves,
		p.cfg.Persistence,
		p.cfg.Lacunarity,
	)
	return clamp01((n + 1) * 0.5)
}

// clamp01 clamps v to [0, 1]; NaN becomes 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
