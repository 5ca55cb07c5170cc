package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/water"
)

// Storage handles file-based persistence for settings, river paths and exports.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "rivers"),
		filepath.Join(dir, "exports"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// Dir returns the storage root.
func (s *Storage) Dir() string {
	return s.dir
}

// LoadConfig reads settings.json into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "settings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	s.log.Info("loaded settings from file", "path", path)
	return nil
}

// SaveConfig writes cfg to settings.json atomically.
func (s *Storage) SaveConfig(cfg config.Config) error {
	path := filepath.Join(s.dir, "settings.json")
	return s.atomicWriteJSON(path, cfg)
}

// LoadRiver reads rivers/<name>.json, or returns nil if not found.
func (s *Storage) LoadRiver(name string) (*water.RiverPath, error) {
	path, err := s.riverPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read river %s: %w", name, err)
	}

	var rp water.RiverPath
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("parse river %s: %w", name, err)
	}
	return &rp, nil
}

// SaveRiver persists a river path under rivers/<name>.json.
func (s *Storage) SaveRiver(name string, rp water.RiverPath) error {
	path, err := s.riverPath(name)
	if err != nil {
		return err
	}
	return s.atomicWriteJSON(path, rp)
}

// SaveExport renders an export through write and stores it under
// exports/<file> atomically. It returns the final path.
func (s *Storage) SaveExport(file string, write func(io.Writer) error) (string, error) {
	if err := validName(file); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", fmt.Errorf("render %s: %w", file, err)
	}

	path := filepath.Join(s.dir, "exports", file)
	if err := atomicWrite(path, buf.Bytes()); err != nil {
		return "", err
	}
	s.log.Info("saved export", "path", path, "bytes", buf.Len())
	return path, nil
}

func (s *Storage) riverPath(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, "rivers", name+".json"), nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

// atomicWriteJSON marshals v to JSON and writes it with atomicWrite.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	return atomicWrite(path, data)
}

// atomicWrite writes data to a unique temp file next to path and renames it
// into place, so concurrent writers never share a temp file.
func atomicWrite(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
