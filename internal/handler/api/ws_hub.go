package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"CosmicClock/internal/service/metrics"
	"CosmicClock/internal/usecase"
	applogger "CosmicClock/pkg/logger"
)

const (
	wsWriteWait    = 5 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 50 * time.Second
	wsSendBuffer   = 32
)

// LiveMessage is the frame pushed to stream subscribers.
type LiveMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans sampler ticks and forecasts out to WebSocket clients. A client whose
// buffer is full is disconnected rather than slowing the sampler.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	upgrader websocket.Upgrader
	l        *applogger.Logger
}

var _ usecase.Broadcaster = (*Hub)(nil)

func NewHub(l *applogger.Logger) *Hub {
	if l == nil {
		l = applogger.Nop()
	}
	metrics.Register()
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		l: l.With(applogger.String("component", "ws_hub")),
	}
}

// Clients reports connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes the payload once and queues it for every client.
func (h *Hub) Broadcast(kind string, payload interface{}) {
	b, err := json.Marshal(LiveMessage{Type: kind, Data: payload})
	if err != nil {
		h.l.Error("encode live message", applogger.String("type", kind), applogger.Error(err))
		return
	}

	var slow []*wsClient
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.l.Warn("dropping slow client", applogger.String("remote", c.conn.RemoteAddr().String()))
		h.remove(c)
	}
}

// ServeWS upgrades the request and streams until the client goes away.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("ws upgrade failed", applogger.Error(err))
		return nil
	}
	cl := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	metrics.WSClients.Inc()

	go h.writeLoop(cl)
	h.readLoop(cl)
	return nil
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	metrics.WSClients.Dec()
}

// readLoop only services control frames; clients never send data.
func (h *Hub) readLoop(c *wsClient) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
