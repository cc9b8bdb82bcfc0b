package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// UnreadCounter supplies the count sent right after a socket connects.
type UnreadCounter interface {
	UnreadCount(ctx context.Context) (int64, error)
}

// NewUpgrader allows the configured dashboard origins; an empty list or "*" allows any origin.
func NewUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowed = nil
			break
		}
		allowed[o] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		},
	}
}

// HandleNotifications upgrades GET /ws/notifications and pushes the current unread count.
func (h *Hub) HandleNotifications(upgrader websocket.Upgrader, counter UnreadCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}
		client := h.Register(conn)
		slog.Info("notification socket connected", "remote", c.ClientIP(), "user_id", c.GetString("user_id"))

		count, err := counter.UnreadCount(c.Request.Context())
		if err != nil {
			slog.Warn("initial unread count failed", "error", err)
			return
		}
		h.sendTo(client, count)
	}
}

func (h *Hub) sendTo(client *Client, count int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client.Conn]; !ok {
		return
	}
	select {
	case client.Send <- badgeJSON(count):
	default:
	}
}
