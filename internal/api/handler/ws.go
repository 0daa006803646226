package handler

import (
	"net/http"

	"civicvoice/backend/internal/feed"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is public and read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeFeed upgrades to a WebSocket that streams complaint events. Optional
// category, district and clusterId query parameters narrow the stream.
func (h *Handler) ServeFeed(c *gin.Context) {
	if h.Hub == nil {
		unavailable(c, "live feed is not running")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}

	client := feed.NewWebSocketClient(uuid.New().String(), conn, h.Hub, feed.Filter{
		Category:  c.Query("category"),
		District:  c.Query("district"),
		ClusterID: c.Query("clusterId"),
	})
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	client.Run()
}
