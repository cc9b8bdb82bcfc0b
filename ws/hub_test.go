package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCounter int64

func (c staticCounter) UnreadCount(context.Context) (int64, error) {
	return int64(c), nil
}

func dialHub(t *testing.T, hub *Hub, counter UnreadCounter) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/notifications", hub.HandleNotifications(NewUpgrader(nil), counter))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readBadge(t *testing.T, conn *websocket.Conn) BadgeUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg BadgeUpdate
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_SendsInitialAndBroadcastCounts(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, staticCounter(3))

	initial := readBadge(t, conn)
	assert.Equal(t, "unread_count", initial.Type)
	assert.Equal(t, int64(3), initial.Count)
	assert.Equal(t, 1, hub.ClientCount())

	hub.BroadcastUnreadCount(7)
	assert.Equal(t, int64(7), readBadge(t, conn).Count)
}

func TestHub_UnregistersClosedClients(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, staticCounter(0))
	readBadge(t, conn)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastUnreadCount(1)
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	u := NewUpgrader([]string{"https://dash.example"})

	req := httptest.NewRequest("GET", "/ws/notifications", nil)
	req.Header.Set("Origin", "https://dash.example")
	assert.True(t, u.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, u.CheckOrigin(req))

	assert.True(t, NewUpgrader([]string{"*"}).CheckOrigin(req))
}
