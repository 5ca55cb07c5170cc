package config

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizedClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Octaves = 20
	cfg.Persistence = 0.01
	cfg.Lacunarity = 9
	cfg.Smoothing = 10
	cfg.Contrast = -1
	cfg.Scale = 0
	cfg.MaxHeight = -5
	cfg.WaterLevel = math.NaN()
	cfg.Size = 100000
	cfg.TerrainType = "  Mountains "

	n := cfg.Normalized()

	tests := []struct {
		name      string
		got, want float64
	}{
		{"octaves", float64(n.Octaves), 8},
		{"persistence", n.Persistence, 0.1},
		{"lacunarity", n.Lacunarity, 4},
		{"smoothing", float64(n.Smoothing), 3},
		{"contrast", n.Contrast, 0.1},
		{"scale", n.Scale, 0.008},
		{"max height", n.MaxHeight, 0},
		{"water level", n.WaterLevel, 50},
		{"size", float64(n.Size), MaxSize},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if n.TerrainType != "mountains" {
		t.Errorf("terrain = %q, want %q", n.TerrainType, "mountains")
	}
	// The receiver is not modified.
	if cfg.Octaves != 20 {
		t.Error("Normalized modified its receiver")
	}
}

func TestNormalizedLowerBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Octaves = 0
	cfg.Lacunarity = 1
	cfg.Smoothing = -2
	cfg.Size = 2

	n := cfg.Normalized()
	if n.Octaves != 1 || n.Lacunarity != 1.5 || n.Smoothing != 0 {
		t.Errorf("got octaves=%d lacunarity=%f smoothing=%d", n.Octaves, n.Lacunarity, n.Smoothing)
	}
	if n.Size != 2 {
		t.Errorf("size = %d, small sizes must be left for the builder to reject", n.Size)
	}
}

func TestMergeRespectsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Size = 129

	fromFile := DefaultConfig()
	fromFile.Seed = 99
	fromFile.Size = 257
	fromFile.TerrainType = "islands"

	Merge(&cfg, &fromFile, map[string]bool{"seed": true})

	if cfg.Seed != 7 {
		t.Errorf("seed = %d, want explicit flag value 7", cfg.Seed)
	}
	if cfg.Size != 257 {
		t.Errorf("size = %d, want file value 257", cfg.Size)
	}
	if cfg.TerrainType != "islands" {
		t.Errorf("terrain = %q, want file value islands", cfg.TerrainType)
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	data := "size: 257\nterrain_type: desert\nwater_type: lake\nseed: 42\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Size != 257 || cfg.TerrainType != "desert" || cfg.WaterType != "lake" || cfg.Seed != 42 {
		t.Errorf("loaded %+v", cfg)
	}
	if cfg.Octaves != 6 || cfg.MaxHeight != 600 {
		t.Errorf("absent fields lost defaults: octaves=%d maxHeight=%f", cfg.Octaves, cfg.MaxHeight)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	data := `{"size": 129, "octaves": 3, "noise_basis": "simplex"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Size != 129 || cfg.Octaves != 3 || cfg.NoiseBasis != "simplex" {
		t.Errorf("loaded %+v", cfg)
	}
}

func TestLoadRemote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/presets/hills.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("size: 257\nterrain_type: hills\nwater_type: river\n"))
	})
	mux.HandleFunc("/presets/broken.yaml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg, err := Load(context.Background(), ts.URL+"/presets/hills.yaml")
	if err != nil {
		t.Fatalf("Load remote: %v", err)
	}
	if cfg.Size != 257 || cfg.TerrainType != "hills" || cfg.WaterType != "river" {
		t.Errorf("loaded %+v", cfg)
	}
	if cfg.Octaves != DefaultConfig().Octaves {
		t.Errorf("octaves = %d, want default", cfg.Octaves)
	}

	if _, err := Load(context.Background(), ts.URL+"/presets/broken.yaml"); err == nil {
		t.Error("expected error for a 500 response")
	}
	if _, err := Load(context.Background(), ts.URL+"/presets/missing.yaml"); err == nil {
		t.Error("expected error for a 404 response")
	}
}

func TestFetchIntoRemoteJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"size": 65, "seed": 99}`))
	}))
	defer ts.Close()

	cfg := DefaultConfig()
	if err := FetchInto(context.Background(), ts.URL+"/settings.json", &cfg); err != nil {
		t.Fatalf("FetchInto: %v", err)
	}
	if cfg.Size != 65 || cfg.Seed != 99 {
		t.Errorf("fetched %+v", cfg)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte("{size"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), path); err == nil {
		t.Error("expected error for malformed json")
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"settings.yaml", "yaml"},
		{"a/b/c.YML", "yaml"},
		{"s3::https://bucket.s3.amazonaws.com/presets/hills.yaml?version=3", "yaml"},
		{"https://example.com/presets/hills.json", "json"},
		{"preset", "json"},
	}
	for _, tt := range tests {
		if got := formatOf(tt.src); got != tt.want {
			t.Errorf("formatOf(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
