package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("item quantity must be greater than zero")
	ErrCustomerInfoRequired = errors.New("customer information required")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
)

// InvalidTransitionError reports an illegal order status change
type InvalidTransitionError struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

// CustomerInfo carries guest checkout identity. When both Email and FullName
// are set the order is placed in guest mode even for an authenticated caller.
type CustomerInfo struct {
	FullName string
	Email    string
	Phone    string
}

// CreateOrderInput is the validated request for placing an order
type CreateOrderInput struct {
	Items           []domain.CartItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	Customer        *CustomerInfo
	UserID          *uuid.UUID
}

// OrderNotifier receives best-effort order events; implementations must not
// block the caller
type OrderNotifier interface {
	OrderCreated(order *domain.Order, customerName, customerEmail string)
	OrderStatusChanged(order *domain.Order)
}

// OrderService defines the interface for order business logic
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) error
	ListAll(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	notifier  OrderNotifier
	logger    *zap.Logger
}

// NewOrderService creates a new instance of OrderService. notifier may be nil
// when real-time delivery is disabled.
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	notifier OrderNotifier,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create validates the cart, resolves guest vs registered mode, and places
// the order atomically. Presence of complete customer info always wins over
// the session identity.
func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	order := &domain.Order{
		ID:              uuid.New(),
		Status:          domain.OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	guest := input.Customer != nil && input.Customer.Email != "" && input.Customer.FullName != ""
	switch {
	case guest:
		order.CustomerName = input.Customer.FullName
		order.CustomerEmail = input.Customer.Email
		order.CustomerPhone = input.Customer.Phone
	case input.UserID != nil:
		order.UserID = input.UserID
	default:
		return nil, ErrCustomerInfoRequired
	}

	if err := s.orderRepo.Create(ctx, order, input.Items); err != nil {
		return nil, err
	}

	// Notification is fire-and-forget; the order is already committed.
	customerName, customerEmail := s.resolveCustomer(ctx, order)
	if s.notifier != nil {
		s.notifier.OrderCreated(order, customerName, customerEmail)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Float64("total", order.TotalAmount),
		zap.Bool("guest", order.IsGuest()),
	)

	return order, nil
}

// ListForUser returns all orders owned by userID
func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetForUser returns one order scoped to its owner
func (s *orderService) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByIDForUser(ctx, id, userID)
}

// Cancel cancels the caller's pending order and restores stock
func (s *orderService) Cancel(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.orderRepo.Cancel(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", id.String()),
		zap.String("user_id", userID.String()),
	)

	if s.notifier != nil {
		if order, err := s.orderRepo.FindByIDForUser(ctx, id, userID); err == nil {
			s.notifier.OrderStatusChanged(order)
		}
	}

	return nil
}

// ListAll returns all orders for the admin back-office
func (s *orderService) ListAll(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error) {
	if status != nil && !status.Valid() {
		return nil, 0, ErrInvalidOrderStatus
	}
	return s.orderRepo.List(ctx, status, page, pageSize)
}

// UpdateStatus moves an order along the status state machine; transitions not
// in the table are rejected
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, &InvalidTransitionError{From: order.Status, To: status}
	}

	if err := s.orderRepo.UpdateStatusFrom(ctx, id, order.Status, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)

	if s.notifier != nil {
		s.notifier.OrderStatusChanged(order)
	}

	return order, nil
}

// resolveCustomer returns a display name/email for notifications, from the
// guest fields or the registered user row
func (s *orderService) resolveCustomer(ctx context.Context, order *domain.Order) (string, string) {
	if order.IsGuest() {
		return order.CustomerName, order.CustomerEmail
	}

	user, err := s.userRepo.FindByID(ctx, *order.UserID)
	if err != nil {
		s.logger.Warn("Failed to resolve order customer",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return "", ""
	}

	return user.FullName(), user.Email
}
