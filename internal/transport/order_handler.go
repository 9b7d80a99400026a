package transport

import (
	"errors"
	"net/http"
	"strconv"

	"techstore/internal/domain"
	"techstore/internal/middleware"
	"techstore/internal/repository"
	"techstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// ShippingAddressRequest is persisted verbatim on the order
type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CustomerInfoRequest carries guest checkout identity
type CustomerInfoRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
}

// CreateOrderRequest represents the order placement payload
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
	CustomerInfo    *CustomerInfoRequest   `json:"customer_info"`
}

// UpdateOrderStatusRequest represents the admin status update payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderListResponse wraps a paginated admin order listing
type OrderListResponse struct {
	Orders []*domain.Order `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. rateLimitMiddleware guards
// placement and may be nil when Redis is unavailable.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, optionalAuthMiddleware, adminMiddleware, rateLimitMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		// Guest checkout is allowed, so auth is optional on placement
		r.Group(func(r chi.Router) {
			r.Use(optionalAuthMiddleware)
			if rateLimitMiddleware != nil {
				r.Use(rateLimitMiddleware)
			}
			r.Post("/", h.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.ListMine)
			r.Get("/{id}", h.Get)
			r.Patch("/{id}/cancel", h.Cancel)
		})
	})

	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListAll)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// Create handles order placement for guests and registered customers
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.CreateOrderInput{
		Items:         make([]domain.CartItem, 0, len(req.Items)),
		PaymentMethod: req.PaymentMethod,
		ShippingAddress: domain.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, domain.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if req.CustomerInfo != nil {
		input.Customer = &service.CustomerInfo{
			FullName: req.CustomerInfo.FullName,
			Email:    req.CustomerInfo.Email,
			Phone:    req.CustomerInfo.Phone,
		}
	}
	if userIDStr, ok := middleware.GetUserID(r.Context()); ok {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			input.UserID = &userID
		}
	}

	order, err := h.orderService.Create(r.Context(), input)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	h.logger.Info("Order created", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListMine handles listing the caller's own orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get handles fetching one order owned by the caller
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetForUser(r.Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Cancel handles cancellation of the caller's pending order
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	if err := h.orderService.Cancel(r.Context(), orderID, userID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			// Not owned, unknown, or no longer pending
			middleware.RespondWithError(w, http.StatusNotFound, "no pending order to cancel")
			return
		}
		h.logger.Error("Failed to cancel order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to cancel order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "order cancelled"})
}

// ListAll handles the admin order listing
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.OrderStatus(raw)
		status = &s
	}

	orders, total, err := h.orderService.ListAll(r.Context(), status, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
			return
		}
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Orders: orders,
		Total:  total,
		Page:   page,
	})
}

// UpdateStatus handles the admin order status update
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		var transitionErr *service.InvalidTransitionError
		switch {
		case errors.Is(err, service.ErrInvalidOrderStatus):
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
		case errors.As(err, &transitionErr):
			middleware.RespondWithError(w, http.StatusConflict, transitionErr.Error())
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// respondOrderError maps order placement failures to status codes. The
// product-not-found message keeps the "not found" substring the storefront
// uses for stale-cart detection.
func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error) {
	var notFound *repository.ProductNotFoundError
	var stock *repository.InsufficientStockError

	switch {
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrCustomerInfoRequired):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		middleware.RespondWithError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &stock):
		middleware.RespondWithError(w, http.StatusConflict, stock.Error())
	default:
		h.logger.Error("Order placement failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
	}
}

func (h *OrderHandler) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}

	return userID, true
}

func parsePagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
