package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/server"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/storage"
)

func main() {
	opts := server.DefaultOptions()

	flag.IntVar(&opts.Port, "port", opts.Port, "http port")
	flag.StringVar(&opts.Dir, "dir", opts.Dir, "storage directory for settings, rivers and exports")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	store, err := storage.New(opts.Dir, log)
	if err != nil {
		log.Error("open storage", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(opts, store, log)
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
