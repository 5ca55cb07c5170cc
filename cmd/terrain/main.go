package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/export"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/storage"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/water"
)

func main() {
	cfg := config.DefaultConfig()

	flag.IntVar(&cfg.Size, "size", cfg.Size, "grid edge length in cells")
	flag.Float64Var(&cfg.Scale, "scale", cfg.Scale, "noise frequency")
	flag.IntVar(&cfg.Octaves, "octaves", cfg.Octaves, "noise octaves (1-8)")
	flag.Float64Var(&cfg.Persistence, "persistence", cfg.Persistence, "amplitude falloff per octave")
	flag.Float64Var(&cfg.Lacunarity, "lacunarity", cfg.Lacunarity, "frequency growth per octave")
	flag.StringVar(&cfg.TerrainType, "terrain", cfg.TerrainType, "plains, hills, mountains, desert, islands or valleys")
	flag.Float64Var(&cfg.MaxHeight, "max-height", cfg.MaxHeight, "height of a fully raised cell")
	flag.Float64Var(&cfg.Contrast, "contrast", cfg.Contrast, "height contrast exponent")
	flag.IntVar(&cfg.Smoothing, "smoothing", cfg.Smoothing, "smoothing passes (0-3)")
	flag.StringVar(&cfg.WaterType, "water", cfg.WaterType, "none, lake, river, ocean or custom-river")
	flag.Float64Var(&cfg.WaterLevel, "water-level", cfg.WaterLevel, "water surface height")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "noise seed")
	flag.Float64Var(&cfg.SmoothCenterWeight, "center-weight", cfg.SmoothCenterWeight, "smoothing weight of the center cell")
	flag.StringVar(&cfg.Distribution, "distribution", cfg.Distribution, "height distribution: linear or lowland")
	flag.StringVar(&cfg.NoiseBasis, "basis", cfg.NoiseBasis, "noise basis: gradient, simplex or perlin")

	var (
		configSrc    = flag.String("config", "", "settings file path or URL (yaml or json)")
		riverSrc     = flag.String("river", "", "river path file path or URL (json)")
		riverDisplay = flag.Int("river-display", 0, "display surface size the river was drawn on (0 = grid units)")
		outDir       = flag.String("out", "terrain-out", "output directory")
		formats      = flag.String("formats", "raw,png", "comma-separated exports: raw, png, preview")
		previewSize  = flag.Int("preview-size", 512, "preview image edge length")
		logLevel     = flag.String("log-level", "info", "debug, info, warn or error")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, log, &cfg, *configSrc, *riverSrc, *riverDisplay, *outDir, *formats, *previewSize); err != nil {
		log.Error("terrain generation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Config, configSrc, riverSrc string,
	riverDisplay int, outDir, formats string, previewSize int,
) error {
	if configSrc != "" {
		fromFile, err := config.Load(ctx, configSrc)
		if err != nil {
			return err
		}
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, &fromFile, explicit)
		log.Info("loaded settings", "source", configSrc)
	}

	var river *water.RiverPath
	if riverSrc != "" {
		var rp water.RiverPath
		if err := config.FetchInto(ctx, riverSrc, &rp); err != nil {
			return fmt.Errorf("load river: %w", err)
		}
		if riverDisplay > 0 {
			rp = water.ScalePath(rp, riverDisplay, cfg.Normalized().Size)
		}
		river = &rp
	}

	res, err := terrain.NewEngine(log).Generate(*cfg, river)
	if err != nil {
		return err
	}

	store, err := storage.New(outDir, log)
	if err != nil {
		return err
	}
	if err := store.SaveConfig(res.Settings); err != nil {
		return err
	}
	if river != nil {
		if err := store.SaveRiver("river", *river); err != nil {
			return err
		}
	}

	for _, name := range strings.Split(formats, ",") {
		f := export.Format(strings.TrimSpace(name))
		if f == "" {
			continue
		}
		if _, err := store.SaveExport(export.FileName(f, res.Final.Size), func(w io.Writer) error {
			return export.Write(w, f, res.Final, previewSize)
		}); err != nil {
			return err
		}
	}

	fmt.Printf("size:     %dx%d\n", res.Stats.Size, res.Stats.Size)
	fmt.Printf("min:      %.2f\n", res.Stats.Min)
	fmt.Printf("max:      %.2f\n", res.Stats.Max)
	fmt.Printf("mean:     %.2f\n", res.Stats.Mean)
	fmt.Printf("water:    %.1f%%\n", res.WaterCoverage*100)
	fmt.Printf("elapsed:  %s\n", res.Elapsed)
	return nil
}
