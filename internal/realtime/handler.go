package realtime

import (
	"net/http"
	"time"

	"techstore/internal/domain"
	"techstore/internal/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 45 * time.Second
	maxMessageSize = 512
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced by the HTTP middleware stack
		return true
	},
}

type client struct {
	conn   *websocket.Conn
	send   chan Envelope
	userID uuid.UUID
	admin  bool
}

// Handler upgrades authenticated requests to websocket sessions and
// registers them with the hub
type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewHandler creates a websocket handler bound to a hub
func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Connect handles GET /ws. The route sits behind the auth middleware, so the
// role is read from the server-validated token claims, never from a
// client-supplied payload.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user identity", http.StatusUnauthorized)
		return
	}

	role, _ := middleware.GetUserRole(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan Envelope, sendBufferSize),
		userID: userID,
		admin:  role == domain.RoleAdmin,
	}

	h.hub.register(c)
	h.logger.Info("Websocket session connected",
		zap.String("user_id", userID.String()),
		zap.Bool("admin", c.admin),
	)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump serializes all writes for one session, including pings
func (h *Handler) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pings are answered and disconnects are
// noticed promptly; inbound payloads are ignored
func (h *Handler) readPump(c *client) {
	defer func() {
		h.hub.unregister(c)
		c.conn.Close()
		h.logger.Info("Websocket session disconnected",
			zap.String("user_id", c.userID.String()),
		)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
