package config

import (
	"math"
	"strings"
)

// MaxSize bounds the grid edge length so a bad settings file cannot request
// an unbounded allocation.
const MaxSize = 8193

// MaxSmoothing caps stencil smoothing iterations.
const MaxSmoothing = 3

// Config holds the generation settings. It is plain data: any producer may
// fill it, and Normalized clamps it before use.
type Config struct {
	Size        int     `json:"size" yaml:"size"`
	Scale       float64 `json:"scale" yaml:"scale"`
	Octaves     int     `json:"octaves" yaml:"octaves"`
	Persistence float64 `json:"persistence" yaml:"persistence"`
	Lacunarity  float64 `json:"lacunarity" yaml:"lacunarity"`
	TerrainType string  `json:"terrain_type" yaml:"terrain_type"` // plains, hills, mountains, desert, islands, valleys
	MaxHeight   float64 `json:"max_height" yaml:"max_height"`
	Contrast    float64 `json:"contrast" yaml:"contrast"`
	Smoothing   int     `json:"smoothing" yaml:"smoothing"`
	WaterType   string  `json:"water_type" yaml:"water_type"` // none, lake, river, ocean, custom-river
	WaterLevel  float64 `json:"water_level" yaml:"water_level"`
	Seed        int64   `json:"seed" yaml:"seed"`

	SmoothCenterWeight float64 `json:"smooth_center_weight" yaml:"smooth_center_weight"`
	Distribution       string  `json:"distribution" yaml:"distribution"` // linear or lowland
	NoiseBasis         string  `json:"noise_basis" yaml:"noise_basis"`   // gradient, simplex or perlin
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Size:               513,
		Scale:              0.008,
		Octaves:            6,
		Persistence:        0.6,
		Lacunarity:         2.0,
		TerrainType:        "plains",
		MaxHeight:          600,
		Contrast:           1.0,
		Smoothing:          1,
		WaterType:          "none",
		WaterLevel:         50,
		Seed:               12345,
		SmoothCenterWeight: 4,
		Distribution:       "linear",
		NoiseBasis:         "gradient",
	}
}

// Normalized returns a copy with every numeric field clamped to its working
// range. Non-finite values fall back to the defaults. Size <= 2 is left as is
// so the builder can reject it.
func (c Config) Normalized() Config {
	d := DefaultConfig()

	if c.Size > MaxSize {
		c.Size = MaxSize
	}
	c.Octaves = clampInt(c.Octaves, 1, 8)
	c.Smoothing = clampInt(c.Smoothing, 0, MaxSmoothing)

	c.Persistence = clampFloat(c.Persistence, 0.1, 1.0, d.Persistence)
	c.Lacunarity = clampFloat(c.Lacunarity, 1.5, 4.0, d.Lacunarity)
	c.Contrast = clampFloat(c.Contrast, 0.1, 5.0, d.Contrast)
	c.SmoothCenterWeight = clampFloat(c.SmoothCenterWeight, 0, 16, d.SmoothCenterWeight)

	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		c.Scale = d.Scale
	}
	c.MaxHeight = clampFloat(c.MaxHeight, 0, math.MaxFloat64, d.MaxHeight)
	c.WaterLevel = clampFloat(c.WaterLevel, 0, math.MaxFloat64, d.WaterLevel)

	c.TerrainType = normalizeTag(c.TerrainType)
	c.WaterType = normalizeTag(c.WaterType)
	c.Distribution = normalizeTag(c.Distribution)
	c.NoiseBasis = normalizeTag(c.NoiseBasis)
	return c
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["size"] {
		cfg.Size = fromFile.Size
	}
	if !explicitFlags["scale"] {
		cfg.Scale = fromFile.Scale
	}
	if !explicitFlags["octaves"] {
		cfg.Octaves = fromFile.Octaves
	}
	if !explicitFlags["persistence"] {
		cfg.Persistence = fromFile.Persistence
	}
	if !explicitFlags["lacunarity"] {
		cfg.Lacunarity = fromFile.Lacunarity
	}
	if !explicitFlags["terrain"] {
		cfg.TerrainType = fromFile.TerrainType
	}
	if !explicitFlags["max-height"] {
		cfg.MaxHeight = fromFile.MaxHeight
	}
	if !explicitFlags["contrast"] {
		cfg.Contrast = fromFile.Contrast
	}
	if !explicitFlags["smoothing"] {
		cfg.Smoothing = fromFile.Smoothing
	}
	if !explicitFlags["water"] {
		cfg.WaterType = fromFile.WaterType
	}
	if !explicitFlags["water-level"] {
		cfg.WaterLevel = fromFile.WaterLevel
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["center-weight"] {
		cfg.SmoothCenterWeight = fromFile.SmoothCenterWeight
	}
	if !explicitFlags["distribution"] {
		cfg.Distribution = fromFile.Distribution
	}
	if !explicitFlags["basis"] {
		cfg.NoiseBasis = fromFile.NoiseBasis
	}
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat clamps v to [lo, hi]; NaN becomes def.
func clampFloat(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
