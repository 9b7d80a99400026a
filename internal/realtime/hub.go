// Package realtime delivers ephemeral, best-effort events to connected
// dashboard sessions. It is not a durable queue: events emitted while no
// admin is connected are lost, and delivery failures are swallowed.
package realtime

import (
	"fmt"
	"sync"
	"time"

	"techstore/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server -> client event types
const (
	EventNewOrder          = "new-order"
	EventOrderStatusChange = "order-status-change"
	EventNewContact        = "new-contact"
)

// Envelope is the wire format for every pushed event
type Envelope struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// OrderSummary is the order payload pushed to dashboards
type OrderSummary struct {
	ID            uuid.UUID          `json:"id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	TotalAmount   float64            `json:"total_amount"`
	ItemCount     int                `json:"item_count"`
	Status        domain.OrderStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ContactSummary is the contact message payload pushed to dashboards
type ContactSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

// Hub tracks live connections within one server process: a set of admin
// sessions that receive every event, and per-user sessions that receive
// status changes for their own orders. All notify methods are fire-and-forget
// and safe to call on a nil Hub.
type Hub struct {
	mu     sync.RWMutex
	admins map[*client]struct{}
	users  map[uuid.UUID]map[*client]struct{}
	logger *zap.Logger
	closed bool
}

// NewHub creates an empty connection registry
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		admins: make(map[*client]struct{}),
		users:  make(map[uuid.UUID]map[*client]struct{}),
		logger: logger,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(c.send)
		return
	}

	if c.admin {
		h.admins[c] = struct{}{}
	}
	if c.userID != uuid.Nil {
		sessions, ok := h.users[c.userID]
		if !ok {
			sessions = make(map[*client]struct{})
			h.users[c.userID] = sessions
		}
		sessions[c] = struct{}{}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.admins[c]; ok {
		delete(h.admins, c)
	}
	if sessions, ok := h.users[c.userID]; ok {
		delete(sessions, c)
		if len(sessions) == 0 {
			delete(h.users, c.userID)
		}
	}
}

// broadcastToAdmins pushes an envelope to every connected admin session.
// A session whose send buffer is full is skipped; delivery is best-effort.
func (h *Hub) broadcastToAdmins(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.admins {
		select {
		case c.send <- env:
		default:
			h.logger.Warn("Dropping event for slow admin session",
				zap.String("type", env.Type),
			)
		}
	}
}

// sendToUser pushes an envelope to the sessions of one user, if connected
func (h *Hub) sendToUser(userID uuid.UUID, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.users[userID] {
		select {
		case c.send <- env:
		default:
		}
	}
}

// AdminCount returns the number of connected admin sessions
func (h *Hub) AdminCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.admins)
}

// OrderCreated notifies all connected admins about a newly placed order
func (h *Hub) OrderCreated(order *domain.Order, customerName, customerEmail string) {
	if h == nil {
		return
	}

	h.broadcastToAdmins(Envelope{
		Type:    EventNewOrder,
		Message: fmt.Sprintf("New order from %s", customerName),
		Data: OrderSummary{
			ID:            order.ID,
			CustomerName:  customerName,
			CustomerEmail: customerEmail,
			TotalAmount:   order.TotalAmount,
			ItemCount:     len(order.Items),
			Status:        order.Status,
			CreatedAt:     order.CreatedAt,
		},
		Timestamp: time.Now().UTC(),
	})
}

// OrderStatusChanged notifies all connected admins and, when the order
// belongs to a registered user, that user's own sessions
func (h *Hub) OrderStatusChanged(order *domain.Order) {
	if h == nil {
		return
	}

	env := Envelope{
		Type:    EventOrderStatusChange,
		Message: fmt.Sprintf("Order %s is now %s", order.ID, order.Status),
		Data: OrderSummary{
			ID:            order.ID,
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			TotalAmount:   order.TotalAmount,
			ItemCount:     len(order.Items),
			Status:        order.Status,
			CreatedAt:     order.CreatedAt,
		},
		Timestamp: time.Now().UTC(),
	}

	h.broadcastToAdmins(env)
	if order.UserID != nil {
		h.sendToUser(*order.UserID, env)
	}
}

// ContactReceived notifies all connected admins about a contact submission
func (h *Hub) ContactReceived(message *domain.ContactMessage) {
	if h == nil {
		return
	}

	h.broadcastToAdmins(Envelope{
		Type:    EventNewContact,
		Message: fmt.Sprintf("New contact message from %s", message.Name),
		Data: ContactSummary{
			ID:        message.ID,
			Name:      message.Name,
			Email:     message.Email,
			Subject:   message.Subject,
			CreatedAt: message.CreatedAt,
		},
		Timestamp: time.Now().UTC(),
	})
}

// Close disconnects every session and rejects further registrations
func (h *Hub) Close() {
	if h == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for c := range h.admins {
		c.conn.Close()
	}
	for _, sessions := range h.users {
		for c := range sessions {
			c.conn.Close()
		}
	}
	h.admins = make(map[*client]struct{})
	h.users = make(map[uuid.UUID]map[*client]struct{})
}
