package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"techstore/internal/domain"
	"techstore/internal/mailer"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minContactMessageLength = 10

var (
	ErrContactFieldsRequired = errors.New("name, email, subject and message are required")
	ErrMessageTooShort       = errors.New("message must be at least 10 characters")
	ErrInvalidContactStatus  = errors.New("invalid contact message status")
)

// ContactTransitionError reports an illegal contact status change
type ContactTransitionError struct {
	From domain.ContactStatus
	To   domain.ContactStatus
}

func (e *ContactTransitionError) Error() string {
	return "cannot change contact message status from " + string(e.From) + " to " + string(e.To)
}

// ContactNotifier receives best-effort contact events
type ContactNotifier interface {
	ContactReceived(message *domain.ContactMessage)
}

// ContactService defines the interface for contact message business logic
type ContactService interface {
	Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error)
	List(ctx context.Context, status *domain.ContactStatus) ([]*domain.ContactMessage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactService struct {
	contactRepo repository.ContactRepository
	notifier    ContactNotifier
	mailer      *mailer.Mailer
	logger      *zap.Logger
}

// NewContactService creates a new instance of ContactService. notifier and
// mailer may be nil when the respective channel is disabled.
func NewContactService(
	contactRepo repository.ContactRepository,
	notifier ContactNotifier,
	m *mailer.Mailer,
	logger *zap.Logger,
) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		notifier:    notifier,
		mailer:      m,
		logger:      logger,
	}
}

// Submit validates and persists a contact submission, then notifies admins
// over the real-time channel and forwards the message to the support inbox.
// Both side channels are best-effort and never fail the request.
func (s *contactService) Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)

	if name == "" || email == "" || subject == "" || message == "" {
		return nil, ErrContactFieldsRequired
	}
	if len(message) < minContactMessageLength {
		return nil, ErrMessageTooShort
	}

	contact := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		Status:    domain.ContactStatusNew,
		CreatedAt: time.Now(),
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ContactReceived(contact)
	}

	if err := s.mailer.SendContactNotification(ctx, contact); err != nil {
		s.logger.Error("Failed to send contact notification email",
			zap.String("message_id", contact.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Contact message received",
		zap.String("message_id", contact.ID.String()),
	)

	return contact, nil
}

// List returns contact messages for the admin back-office
func (s *contactService) List(ctx context.Context, status *domain.ContactStatus) ([]*domain.ContactMessage, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidContactStatus
	}
	return s.contactRepo.List(ctx, status)
}

// UpdateStatus moves a message along the status state machine
func (s *contactService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) error {
	if !status.Valid() {
		return ErrInvalidContactStatus
	}

	message, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !message.Status.CanTransitionTo(status) {
		return &ContactTransitionError{From: message.Status, To: status}
	}

	return s.contactRepo.UpdateStatusFrom(ctx, id, message.Status, status)
}

// Delete removes a contact message permanently
func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.contactRepo.Delete(ctx, id)
}
