package terrain

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/water"
	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGeneratePipeline(t *testing.T) {
	river := &water.RiverPath{Points: []water.Point{{X: 2, Y: 2}, {X: 60, Y: 40}}, Width: 3}

	for _, wt := range []string{"none", "lake", "river", "ocean", "custom-river", "bogus"} {
		cfg := config.DefaultConfig()
		cfg.Size = 65
		cfg.Scale = 0.05
		cfg.TerrainType = "mountains"
		cfg.WaterType = wt
		cfg.WaterLevel = 200

		res, err := testEngine().Generate(cfg, river)
		if err != nil {
			t.Fatalf("%s: Generate: %v", wt, err)
		}

		for i, v := range res.Final.Cells {
			if v > res.Raw.Cells[i] {
				t.Fatalf("%s: cell %d raised by carving", wt, i)
			}
			if v < 0 || v > cfg.MaxHeight {
				t.Fatalf("%s: cell %d = %f out of range", wt, i, v)
			}
		}

		want, _ := heightmap.ComputeStats(res.Final)
		if res.Stats != want {
			t.Errorf("%s: stats %+v, want %+v", wt, res.Stats, want)
		}
		if res.WaterCoverage < 0 || res.WaterCoverage > 1 {
			t.Errorf("%s: coverage = %f", wt, res.WaterCoverage)
		}
	}
}

func TestGenerateCarvingDoesNotTouchRaw(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Size = 33
	cfg.WaterType = "ocean"
	cfg.WaterLevel = 1000

	e := testEngine()
	res, err := e.Generate(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Raw.Equal(e.Builder().Last()) {
		t.Error("raw grid differs from the builder's retained grid")
	}
	if res.Raw.Equal(res.Final) {
		t.Error("ocean at a high level should have carved something")
	}
}

func TestGenerateRejectsTinyGrid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Size = 2
	if _, err := testEngine().Generate(cfg, nil); !errors.Is(err, heightmap.ErrSizeTooSmall) {
		t.Errorf("error = %v, want ErrSizeTooSmall", err)
	}
}
