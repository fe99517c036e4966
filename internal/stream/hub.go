// Package stream broadcasts simulated frames to external renderers over a
// websocket and feeds their pointer input back to the simulation.
package stream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/interact"
	"github.com/san-kum/clothsim/internal/render"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	readLimit  = 1 << 16
	sendBuffer = 8
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a sim.Observer that fans every frame out to connected clients.
// Slow clients drop frames instead of blocking the simulation.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger
	hello    []byte

	mu      sync.Mutex
	clients map[*client]struct{}

	// Inbox receives decoded client commands. The simulation goroutine
	// drains it between frames.
	Inbox chan Command
}

func NewHub(n int, faces [][3]int, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	hello, _ := json.Marshal(Hello{Type: TypeHello, N: n, Faces: faces})
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		hello:   hello,
		clients: make(map[*client]struct{}),
		Inbox:   make(chan Command, 64),
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- h.hello

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("client connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		h.logger.Info("client disconnected")
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		cmd, err := DecodeCommand(msg)
		if err != nil {
			h.logger.Warn("bad command", "err", err)
			continue
		}
		select {
		case h.Inbox <- cmd:
		default:
			h.logger.Warn("inbox full, dropping command", "type", cmd.Type)
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// OnFrame encodes the mesh buffers once and queues them for every client.
func (h *Hub) OnFrame(frame int, t float64, _ *cloth.System, mesh *render.Mesh) {
	if h.Clients() == 0 {
		return
	}
	msg, err := json.Marshal(Frame{
		Type:      TypeFrame,
		Frame:     frame,
		Time:      t,
		Positions: mesh.Positions,
		Normals:   mesh.Normals,
	})
	if err != nil {
		h.logger.Error("encode frame", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Apply performs a client command on the grabber.
func Apply(cmd Command, g *interact.Grabber) {
	switch cmd.Type {
	case TypeGrab:
		g.GrabPoint(cmd.X, cmd.Y)
	case TypeDrag:
		g.MoveScreen(cmd.DX, cmd.DY)
	case TypeRelease:
		g.ReleasePoint()
	}
}

// Run steps s at fps frames per second until ctx ends or a frame fails,
// applying queued client commands before each frame.
func Run(ctx context.Context, s *sim.Simulation, h *Hub, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		drain:
			for {
				select {
				case cmd := <-h.Inbox:
					if s.Grabber != nil {
						Apply(cmd, s.Grabber)
					}
				default:
					break drain
				}
			}
			if err := s.Frame(); err != nil {
				return err
			}
		}
	}
}
