package pubsub

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256

	// Largest frame accepted from a client
	readLimit = 1 << 20
)

// Conn is one client websocket connection
type Conn struct {
	id          string
	send        chan []byte
	topics      map[string]bool // guarded by Hub.mu
	connectedAt time.Time
}

// ID returns the connection id reported by whoami
func (c *Conn) ID() string {
	return c.id
}

// Handler returns the websocket endpoint for a hub
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, hub)
	}
}

// ServeWS upgrades the request and serves the connection until either side
// closes it
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = ws.CloseNow() }()
	ws.SetReadLimit(readLimit)

	conn := hub.NewConn()
	hub.Register(conn)
	defer hub.Unregister(conn)

	hub.logger.Debug("client connected",
		slog.String("connection_id", conn.id),
		slog.String("user_agent", r.UserAgent()))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go writeLoop(ctx, ws, conn)

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				hub.logger.Debug("client closed connection", slog.String("connection_id", conn.id))
			} else if ctx.Err() == nil {
				hub.logger.Info("connection ended",
					slog.String("connection_id", conn.id),
					slog.String("error", err.Error()))
			}
			return
		}
		hub.Handle(ctx, conn, data)
	}
}

func writeLoop(ctx context.Context, ws *websocket.Conn, conn *Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-conn.send:
			if !ok {
				// Hub dropped the connection
				_ = ws.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := ws.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
