package terrain

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/generator"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/water"
	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

// Result is the outcome of one generation.
type Result struct {
	Settings      config.Config
	Raw           *heightmap.Heightmap // before carving, never modified by carving
	Final         *heightmap.Heightmap
	Stats         heightmap.Stats
	WaterCoverage float64
	Elapsed       time.Duration
}

// Engine runs the settings → heightmap → water → stats pipeline.
type Engine struct {
	log     *slog.Logger
	builder *generator.Builder
	carver  *water.Carver
}

// NewEngine creates an Engine with its own builder and carver.
func NewEngine(log *slog.Logger) *Engine {
	return &Engine{
		log:     log,
		builder: generator.New(log),
		carver:  water.New(log),
	}
}

// Builder exposes the engine's builder so callers can query its last grid.
func (e *Engine) Builder() *generator.Builder {
	return e.builder
}

// Generate builds terrain from cfg and carves the configured water feature.
// river is only used for the custom-river water type and may be nil.
func (e *Engine) Generate(cfg config.Config, river *water.RiverPath) (*Result, error) {
	start := time.Now()
	cfg = cfg.Normalized()

	raw, err := e.builder.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}

	wt, ok := water.ParseType(cfg.WaterType)
	if !ok {
		e.log.Warn("unknown water type, skipping water", "water", cfg.WaterType)
	}
	final := e.carver.Apply(raw, water.Spec{Type: wt, Level: cfg.WaterLevel, River: river})

	stats, _ := heightmap.ComputeStats(final)
	res := &Result{
		Settings:      cfg,
		Raw:           raw,
		Final:         final,
		Stats:         stats,
		WaterCoverage: water.Coverage(final, cfg.WaterLevel),
		Elapsed:       time.Since(start),
	}

	e.log.Info("terrain generated",
		"size", cfg.Size,
		"terrain", cfg.TerrainType,
		"water", wt.String(),
		"seed", cfg.Seed,
		"min", stats.Min,
		"max", stats.Max,
		"mean", stats.Mean,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
