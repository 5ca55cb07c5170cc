package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/export"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/water"
)

// request is the body of a generation or export request. Missing settings
// fields keep their defaults.
type request struct {
	Settings     json.RawMessage  `json:"settings"`
	River        *water.RiverPath `json:"river,omitempty"`
	RiverName    string           `json:"river_name,omitempty"`
	RiverDisplay int              `json:"river_display,omitempty"`
}

// resolve turns r into normalized settings and a river path in grid units.
func (s *Server) resolve(r request) (config.Config, *water.RiverPath, error) {
	cfg := config.DefaultConfig()
	if len(r.Settings) > 0 && string(r.Settings) != "null" {
		if err := json.Unmarshal(r.Settings, &cfg); err != nil {
			return cfg, nil, fmt.Errorf("decode settings: %w", err)
		}
	}
	cfg = cfg.Normalized()

	river := r.River
	if river == nil && r.RiverName != "" && s.store != nil {
		rp, err := s.store.LoadRiver(r.RiverName)
		if err != nil {
			return cfg, nil, err
		}
		river = rp
	}
	if river != nil && r.RiverDisplay > 0 {
		scaled := water.ScalePath(*river, r.RiverDisplay, cfg.Size)
		river = &scaled
	}
	return cfg, river, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"builds": s.builds.Load(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := export.Format(r.PathValue("format"))
	switch format {
	case export.FormatRAW, export.FormatPNG, export.FormatPreview:
	default:
		http.Error(w, fmt.Sprintf("unknown export format %q", format), http.StatusNotFound)
		return
	}

	var req request
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg, river, err := s.resolve(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := terrain.NewEngine(s.log).Generate(cfg, river)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, res.Final, PreviewSize); err != nil {
		s.log.Error("render export", "format", format, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	contentType := "image/png"
	if format == export.FormatRAW {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(format, cfg.Size)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Debug("write export", "error", err)
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	cfg := config.DefaultConfig()
	if s.store != nil {
		if err := s.store.LoadConfig(&cfg); err != nil {
			s.log.Warn("load settings", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, cfg.Normalized())
}

func (s *Server) handleGetRiver(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "storage disabled", http.StatusNotFound)
		return
	}
	rp, err := s.store.LoadRiver(r.PathValue("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rp == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rp)
}

func (s *Server) handlePutRiver(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "storage disabled", http.StatusNotFound)
		return
	}
	var rp water.RiverPath
	if err := decodeBody(w, r, &rp); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.SaveRiver(r.PathValue("name"), water.SmoothPath(rp)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
