package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/storage"
)

const (
	// PreviewSize is the edge of the preview image sent to clients, matching
	// the river drawing surface.
	PreviewSize = 512

	maxBodyBytes  = 1 << 20
	writeTimeout  = 10 * time.Second
	shutdownGrace = 5 * time.Second
)

// Options holds the preview server configuration.
type Options struct {
	Port int    `json:"port"`
	Dir  string `json:"dir"` // storage root for settings, rivers and exports
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Port: 8080,
		Dir:  "terrain-data",
	}
}

// Server serves terrain previews over WebSocket and exports over HTTP.
type Server struct {
	opts     Options
	log      *slog.Logger
	store    *storage.Storage
	upgrader websocket.Upgrader

	builds atomic.Int64 // session builds in progress
}

// New creates a new Server. store may be nil, in which case settings and
// rivers are not persisted.
func New(opts Options, store *storage.Storage, log *slog.Logger) *Server {
	return &Server{
		opts:  opts,
		log:   log,
		store: store,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /export/{format}", s.handleExport)
	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("GET /rivers/{name}", s.handleGetRiver)
	mux.HandleFunc("PUT /rivers/{name}", s.handlePutRiver)
	return mux
}

// Start begins listening for connections and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve handles requests on listener until the context is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	s.log.Info("server started", "addr", listener.Addr().String(), "dir", s.opts.Dir)

	// Shut down when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown", "error", err)
		}
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.log.Info("server shutting down")
	return nil
}
