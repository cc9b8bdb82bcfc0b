package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans unread-count badge updates out to every connected dashboard.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*Client
}

type BadgeUpdate struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*Client)}
}

// Register starts the pumps for conn. They unregister and close it on exit.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	client := &Client{Conn: conn, Send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[conn] = client
	h.mu.Unlock()

	go h.writePump(client)
	go h.readPump(client)
	return client
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, ok := h.clients[conn]; ok {
		close(client.Send)
		delete(h.clients, conn)
	}
}

// Broadcast drops the message for clients whose buffer is full.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) BroadcastUnreadCount(count int64) {
	h.Broadcast(badgeJSON(count))
}

func badgeJSON(count int64) []byte {
	data, err := json.Marshal(BadgeUpdate{Type: "unread_count", Count: count})
	if err != nil {
		slog.Error("badge update marshal failed", "error", err)
	}
	return data
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) readPump(c *Client) {
	defer h.Unregister(c.Conn)

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
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
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
