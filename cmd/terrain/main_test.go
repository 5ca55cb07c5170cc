package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
)

func TestRunWritesExports(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(settings, []byte("size: 17\nterrain_type: islands\nwater_type: custom-river\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	river := filepath.Join(dir, "river.json")
	if err := os.WriteFile(river, []byte(`{"path":[{"x":0,"y":0},{"x":256,"y":256}],"width":40}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	cfg := config.DefaultConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), log, &cfg, settings, river, 512, out, "raw, png,preview", 64); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"terrain_17x17.raw", "terrain_heightmap_17x17.png", "terrain_preview_17x17.png"} {
		if _, err := os.Stat(filepath.Join(out, "exports", name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}
	if fi, err := os.Stat(filepath.Join(out, "exports", "terrain_17x17.raw")); err == nil && fi.Size() != 17*17*2 {
		t.Errorf("raw size = %d", fi.Size())
	}
	if _, err := os.Stat(filepath.Join(out, "rivers", "river.json")); err != nil {
		t.Errorf("river not saved: %v", err)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Size = 9
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), log, &cfg, "", "", 0, t.TempDir(), "tiff", 0); err == nil {
		t.Error("expected error for unknown format")
	}
}
