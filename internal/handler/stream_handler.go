package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jengzang/routesync/internal/app"
	"github.com/jengzang/routesync/internal/metrics"
	"github.com/jengzang/routesync/internal/store"
	"github.com/jengzang/routesync/pkg/logger"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StreamHandler pushes map state snapshots over a WebSocket
type StreamHandler struct {
	app      *app.App
	log      logger.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(a *app.App, log logger.Logger) *StreamHandler {
	return &StreamHandler{
		app: a,
		log: log.With("component", "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type streamMessage struct {
	Type  string          `json:"type"`
	State *store.MapState `json:"state,omitempty"`
}

// MapStream handles GET /api/v1/map/stream. The current state is sent on
// connect, then every published state. A slow client only sees the latest.
func (h *StreamHandler) MapStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn(c.Request.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	metrics.StreamConnectionsGauge.Inc()
	defer metrics.StreamConnectionsGauge.Dec()

	ctx, cancel := context.WithCancel(logger.WithAction(c.Request.Context(), "map_stream"))
	defer cancel()

	updates, unsubscribe := h.app.Map.Subscribe()
	defer unsubscribe()

	go h.readPump(conn, cancel)

	initial, err := h.app.Map.State(ctx)
	if err != nil {
		return
	}
	if err := h.write(conn, streamMessage{Type: "state", State: &initial}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, streamMessage{Type: "state", State: &st}); err != nil {
				h.log.Debug(ctx, "stream client gone", "error", err.Error())
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed and a
// closed connection is noticed
func (h *StreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, msg streamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
