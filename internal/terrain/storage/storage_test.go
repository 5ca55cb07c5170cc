package storage

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/water"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	cfg := config.DefaultConfig()
	if err := s.LoadConfig(&cfg); err != nil {
		t.Fatalf("LoadConfig without file: %v", err)
	}
	if cfg != config.DefaultConfig() {
		t.Error("missing settings file should leave cfg unchanged")
	}

	cfg.TerrainType = "valleys"
	cfg.Seed = 777
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded := config.DefaultConfig()
	if err := s.LoadConfig(&loaded); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}

	assertNoTempFiles(t, s.Dir())
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	left, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(left) > 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestConcurrentSaveConfig(t *testing.T) {
	s := newTestStorage(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers*20)
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 20 {
				cfg := config.DefaultConfig()
				cfg.Seed = int64(w*1000 + i)
				cfg.TerrainType = strings.Repeat("x", 1+w*i)
				if err := s.SaveConfig(cfg); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("SaveConfig: %v", err)
	}

	// Whichever writer won, the file must decode as one complete settings record.
	loaded := config.DefaultConfig()
	if err := s.LoadConfig(&loaded); err != nil {
		t.Fatalf("LoadConfig after concurrent saves: %v", err)
	}
	w, i := int(loaded.Seed/1000), int(loaded.Seed%1000)
	if loaded.TerrainType != strings.Repeat("x", 1+w*i) {
		t.Errorf("settings mix two writers: seed %d, terrain length %d", loaded.Seed, len(loaded.TerrainType))
	}
	assertNoTempFiles(t, s.Dir())
}

func TestRiverRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	missing, err := s.LoadRiver("main")
	if err != nil || missing != nil {
		t.Fatalf("LoadRiver(missing) = %v, %v; want nil, nil", missing, err)
	}

	rp := water.RiverPath{Points: []water.Point{{X: 1, Y: 2}, {X: 30, Y: 40}}, Width: 3}
	if err := s.SaveRiver("main", rp); err != nil {
		t.Fatalf("SaveRiver: %v", err)
	}
	got, err := s.LoadRiver("main")
	if err != nil {
		t.Fatalf("LoadRiver: %v", err)
	}
	if len(got.Points) != 2 || got.Points[1] != rp.Points[1] || got.Width != 3 {
		t.Errorf("loaded %+v, want %+v", got, rp)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	s := newTestStorage(t)
	if err := s.SaveRiver("../escape", water.RiverPath{}); err == nil {
		t.Error("expected error for traversal name")
	}
	if _, err := s.SaveExport("a/b.png", func(io.Writer) error { return nil }); err == nil {
		t.Error("expected error for nested export name")
	}
}

func TestSaveExport(t *testing.T) {
	s := newTestStorage(t)

	path, err := s.SaveExport("out.raw", func(w io.Writer) error {
		_, err := w.Write([]byte{1, 2, 3})
		return err
	})
	if err != nil {
		t.Fatalf("SaveExport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Errorf("export has %d bytes, want 3", len(data))
	}

	boom := errors.New("boom")
	if _, err := s.SaveExport("bad.raw", func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("SaveExport error = %v, want wrapped boom", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "exports", "bad.raw")); !os.IsNotExist(err) {
		t.Error("failed export should not leave a file")
	}
}
