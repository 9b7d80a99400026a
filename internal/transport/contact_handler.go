package transport

import (
	"errors"
	"net/http"

	"techstore/internal/domain"
	"techstore/internal/middleware"
	"techstore/internal/repository"
	"techstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactRequest represents the public contact-us payload
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required,min=10"`
}

// UpdateContactStatusRequest represents the admin status update payload
type UpdateContactStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ContactHandler handles HTTP requests for contact messages
type ContactHandler struct {
	contactService service.ContactService
	logger         *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// RegisterRoutes registers all contact routes. rateLimitMiddleware guards the
// public submission endpoint and may be nil when Redis is unavailable.
func (h *ContactHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, rateLimitMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if rateLimitMiddleware != nil {
			r.Use(rateLimitMiddleware)
		}
		r.Post("/api/contact", h.Submit)
	})

	r.Route("/api/admin/contact-messages", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.List)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
	})
}

// Submit handles a public contact-us submission
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Contact validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.contactService.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrContactFieldsRequired) || errors.Is(err, service.ErrMessageTooShort) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to submit contact message", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"id": message.ID.String()})
}

// List handles the admin contact message listing
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.ContactStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.ContactStatus(raw)
		status = &s
	}

	messages, err := h.contactService.List(r.Context(), status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContactStatus) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid contact message status")
			return
		}
		h.logger.Error("Failed to list contact messages", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, messages)
}

// UpdateStatus handles the admin contact status update
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	var req UpdateContactStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.contactService.UpdateStatus(r.Context(), messageID, domain.ContactStatus(req.Status))
	if err != nil {
		var transitionErr *service.ContactTransitionError
		switch {
		case errors.Is(err, service.ErrInvalidContactStatus):
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid contact message status")
		case errors.As(err, &transitionErr):
			middleware.RespondWithError(w, http.StatusConflict, transitionErr.Error())
		case errors.Is(err, repository.ErrContactMessageNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "contact message not found")
		default:
			h.logger.Error("Failed to update contact message status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update message status")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// Delete handles the admin hard delete of a contact message
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := h.contactService.Delete(r.Context(), messageID); err != nil {
		if errors.Is(err, repository.ErrContactMessageNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "contact message not found")
			return
		}
		h.logger.Error("Failed to delete contact message", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "message deleted"})
}
