// Package spectate streams session events to websocket spectators.
package spectate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/plus3/shelfmaze/game"
)

const (
	writeWait        = 5 * time.Second
	defaultQueueSize = 64
)

type Options struct {
	// QueueSize bounds the frames buffered per spectator. A spectator whose
	// queue is full is disconnected.
	QueueSize int
	Logger    *slog.Logger
}

// Hub fans events out to every connected spectator. It implements
// game.Listener and is safe for concurrent use.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	session string
	seq     uint64

	highScore atomic.Int64
	queueSize int
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

type client struct {
	id    string
	conn  *websocket.Conn
	codec Codec
	send  chan Frame
}

func NewHub(opts Options) *Hub {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:   make(map[string]*client),
		queueSize: opts.QueueSize,
		logger:    logger.With("component", "spectate"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Spectators are read-only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SetSession tags subsequent frames with a session ID.
func (h *Hub) SetSession(id string) {
	h.mu.Lock()
	h.session = id
	h.mu.Unlock()
}

func (h *Hub) SetHighScore(score int) {
	h.highScore.Store(int64(score))
}

func (h *Hub) HighScore() int {
	return int(h.highScore.Load())
}

// OnEvent publishes e. GameOver also updates the high score served on /highscore.
func (h *Hub) OnEvent(e game.Event) {
	if over, ok := e.(game.GameOver); ok {
		h.SetHighScore(over.HighScore)
	}
	h.Publish(e.Kind(), payload(e))
}

// Publish queues a frame for every spectator without blocking.
func (h *Hub) Publish(kind string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	f := Frame{Seq: h.seq, Session: h.session, Kind: kind, Data: data}
	for _, c := range h.clients {
		select {
		case c.send <- f:
		default:
			h.logger.Warn("dropping slow spectator", "client", c.id)
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.removeLocked(c)
	}
}

// Router returns the HTTP routes of the hub.
func (h *Hub) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/events", h.serveEvents).Methods(http.MethodGet)
	r.HandleFunc("/highscore", h.serveHighScore).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

func (h *Hub) serveHighScore(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"high_score": h.HighScore()})
}

func (h *Hub) serveEvents(w http.ResponseWriter, r *http.Request) {
	codec, err := CodecFor(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:    uuid.NewString(),
		conn:  conn,
		codec: codec,
		send:  make(chan Frame, h.queueSize),
	}
	h.add(c)
	h.logger.Info("spectator connected", "client", c.id, "codec", codec.Name(), "remote", r.RemoteAddr)

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages until the connection closes.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("spectator read failed", "client", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer func() {
		c.conn.Close()
		h.logger.Info("spectator disconnected", "client", c.id)
	}()

	for f := range c.send {
		data, err := c.codec.Encode(f)
		if err != nil {
			h.logger.Error("failed to encode frame", "kind", f.Kind, "error", err)
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(c.codec.MessageType(), data); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
