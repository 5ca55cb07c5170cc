package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain"
	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/export"
	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

// Message types sent to clients.
const (
	MessageResult = "result"
	MessageError  = "error"
)

// Response is sent to the client once a generation completes.
type Response struct {
	Type          string          `json:"type"`
	Generation    uint64          `json:"generation"`
	Size          int             `json:"size,omitempty"`
	Stats         heightmap.Stats `json:"stats"`
	WaterCoverage float64         `json:"water_coverage"`
	ElapsedMS     int64           `json:"elapsed_ms"`
	Preview       string          `json:"preview,omitempty"` // base64 PNG
	Error         string          `json:"error,omitempty"`
}

// session is one WebSocket client. Each incoming request bumps the
// generation counter. At most one build runs per session; requests that
// arrive meanwhile overwrite a single pending slot, so only the newest one
// is built next. A result is only sent if no newer request arrived while it
// was being built.
type session struct {
	srv     *Server
	conn    *websocket.Conn
	engine  *terrain.Engine
	current atomic.Uint64
	writeMu sync.Mutex
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending *job
	running bool
}

// job is one decoded generation request.
type job struct {
	id  uint64
	req request
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	sess := &session{
		srv:    s,
		conn:   conn,
		engine: terrain.NewEngine(s.log),
	}
	s.log.Debug("session opened", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	sess.readLoop(ctx)
	cancel()
	sess.wg.Wait()
	s.log.Debug("session closed", "remote", r.RemoteAddr)
}

func (sess *session) readLoop(ctx context.Context) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.srv.log.Warn("websocket read", "error", err)
			}
			return
		}

		id := sess.current.Add(1)
		var req request
		if err := json.Unmarshal(data, &req); err != nil {
			sess.send(Response{Type: MessageError, Generation: id, Error: "decode request: " + err.Error()})
			continue
		}
		sess.enqueue(ctx, &job{id: id, req: req})
	}
}

// enqueue stores j as the pending request and starts the worker if idle.
func (sess *session) enqueue(ctx context.Context, j *job) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.pending != nil {
		sess.srv.log.Debug("replacing pending generation", "generation", sess.pending.id, "by", j.id)
	}
	sess.pending = j
	if sess.running {
		return
	}
	sess.running = true
	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		sess.work(ctx)
	}()
}

// work builds pending requests one at a time until the slot is empty.
func (sess *session) work(ctx context.Context) {
	for {
		sess.mu.Lock()
		j := sess.pending
		sess.pending = nil
		if j == nil || ctx.Err() != nil {
			sess.running = false
			sess.mu.Unlock()
			return
		}
		sess.mu.Unlock()

		if sess.stale(j.id) {
			sess.srv.log.Debug("skipping stale generation", "generation", j.id)
			continue
		}
		sess.generate(ctx, j.id, j.req)
	}
}

func (sess *session) stale(id uint64) bool {
	return sess.current.Load() != id
}

func (sess *session) generate(ctx context.Context, id uint64, req request) {
	log := sess.srv.log.With("generation", id)

	cfg, river, err := sess.srv.resolve(req)
	if err != nil {
		sess.sendCurrent(id, Response{Type: MessageError, Generation: id, Error: err.Error()})
		return
	}

	sess.srv.builds.Add(1)
	res, err := sess.engine.Generate(cfg, river)
	sess.srv.builds.Add(-1)
	if err != nil {
		sess.sendCurrent(id, Response{Type: MessageError, Generation: id, Error: err.Error()})
		return
	}
	if ctx.Err() != nil || sess.stale(id) {
		log.Debug("dropping stale generation")
		return
	}

	var buf bytes.Buffer
	if err := export.WritePreview(&buf, res.Final, PreviewSize); err != nil {
		log.Error("render preview", "error", err)
		sess.sendCurrent(id, Response{Type: MessageError, Generation: id, Error: "render preview failed"})
		return
	}

	if sess.srv.store != nil {
		if err := sess.srv.store.SaveConfig(res.Settings); err != nil {
			log.Warn("save settings", "error", err)
		}
	}

	sess.sendCurrent(id, Response{
		Type:          MessageResult,
		Generation:    id,
		Size:          res.Final.Size,
		Stats:         res.Stats,
		WaterCoverage: res.WaterCoverage,
		ElapsedMS:     res.Elapsed.Milliseconds(),
		Preview:       base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

// sendCurrent sends resp unless generation id has been superseded.
func (sess *session) sendCurrent(id uint64, resp Response) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.stale(id) {
		sess.srv.log.Debug("dropping stale generation", "generation", id)
		return
	}
	sess.write(resp)
}

func (sess *session) send(resp Response) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	sess.write(resp)
}

// write must be called with writeMu held.
func (sess *session) write(resp Response) {
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := sess.conn.WriteJSON(resp); err != nil {
		sess.srv.log.Debug("websocket write", "error", err)
	}
}
