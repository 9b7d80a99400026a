package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is a closed enumeration of order states
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions defines the legal state machine:
// pending -> processing -> shipped -> delivered, pending -> cancelled.
// delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal transition
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress is persisted verbatim as a JSON blob on the order row
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order represents a placed order; UserID is nil for guest orders, in which
// case the customer fields carry the identity supplied at checkout
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          *uuid.UUID      `json:"user_id" db:"user_id"`
	TotalAmount     float64         `json:"total_amount" db:"total_amount"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	ShippingAddress ShippingAddress `json:"shipping_address" db:"shipping_address"`
	CustomerName    string          `json:"customer_name,omitempty" db:"customer_name"`
	CustomerEmail   string          `json:"customer_email,omitempty" db:"customer_email"`
	CustomerPhone   string          `json:"customer_phone,omitempty" db:"customer_phone"`
	TrackingNumber  *string         `json:"tracking_number" db:"tracking_number"`
	Items           []OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsGuest reports whether the order was placed without a registered account
func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// OrderItem is a line of an order. Price, name and image are snapshots taken
// at order time and never change with the catalog afterwards.
type OrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	ProductImage string    `json:"product_image" db:"product_image"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Price        float64   `json:"price" db:"price"`
	Subtotal     float64   `json:"subtotal" db:"subtotal"`
}

// CartItem is a requested order line before validation against the catalog
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}
