// Package ws keeps websocket sessions of online drivers and pushes notifications to them.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/notify"
	"service-dispatch/internal/retry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one websocket session of a driver.
type Client struct {
	DriverID string
	Conn     *websocket.Conn
	Send     chan []byte
}

// Hub routes notifications to every session a driver has open.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{}
	upgrader websocket.Upgrader
	logger   logx.Logger
}

func NewHub(logger logx.Logger) *Hub {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeDriver upgrades the request and blocks until the session ends.
func (h *Hub) ServeDriver(w http.ResponseWriter, r *http.Request, driverID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", logx.String("driver_id", driverID), logx.Err(err))
		return
	}

	c := &Client{DriverID: driverID, Conn: conn, Send: make(chan []byte, sendBuffer)}
	h.add(c)
	h.logger.Info("ws driver connected", logx.String("driver_id", driverID))

	go h.writePump(c)
	h.readPump(c)
}

// Connected returns the number of open sessions for driverID.
func (h *Hub) Connected(driverID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[driverID])
}

// Notify pushes n to the driver's sessions. Escalations and drivers without a session are skipped.
func (h *Hub) Notify(_ context.Context, n domain.Notification) error {
	if n.DriverID == "" || n.Kind == domain.NotifyEscalation {
		return nil
	}
	body, err := notify.Encode(n)
	if err != nil {
		return retry.Permanent(err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sessions := h.clients[n.DriverID]
	if len(sessions) == 0 {
		h.logger.Debug("ws no session for driver", logx.String("driver_id", n.DriverID))
		return nil
	}
	for c := range sessions {
		select {
		case c.Send <- body:
		default:
			// slow consumer
			h.logger.Warn("ws send buffer full, dropping session", logx.String("driver_id", c.DriverID))
			go h.remove(c)
		}
	}
	return nil
}

// Close drops every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sessions := range h.clients {
		for c := range sessions {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions, ok := h.clients[c.DriverID]
	if !ok {
		sessions = make(map[*Client]struct{})
		h.clients[c.DriverID] = sessions
	}
	sessions[c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions := h.clients[c.DriverID]
	if _, ok := sessions[c]; !ok {
		return
	}
	delete(sessions, c)
	close(c.Send)
	if len(sessions) == 0 {
		delete(h.clients, c.DriverID)
	}
}

// readPump drains inbound frames so pong handlers fire.
func (h *Hub) readPump(c *Client) {
	defer func() {
		h.remove(c)
		_ = c.Conn.Close()
		h.logger.Info("ws driver disconnected", logx.String("driver_id", c.DriverID))
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ws read failed", logx.String("driver_id", c.DriverID), logx.Err(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Warn("ws write failed", logx.String("driver_id", c.DriverID), logx.Err(err))
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.logger.Warn("ws ping failed", logx.String("driver_id", c.DriverID), logx.Err(err))
				return
			}
		}
	}
}
