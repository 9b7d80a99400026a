package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techstore/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrContactMessageNotFound = errors.New("contact message not found")
)

// ContactRepository defines the interface for contact message data access
type ContactRepository interface {
	Create(ctx context.Context, message *domain.ContactMessage) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ContactMessage, error)
	List(ctx context.Context, status *domain.ContactStatus) ([]*domain.ContactMessage, error)
	// UpdateStatusFrom moves a message from one status to another atomically
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.ContactStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create inserts a new contact message using parameterized queries
func (r *contactRepository) Create(ctx context.Context, message *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		message.ID,
		message.Name,
		message.Email,
		message.Subject,
		message.Message,
		message.Status,
		message.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

// FindByID retrieves a contact message by ID
func (r *contactRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, status, created_at
		FROM contact_messages
		WHERE id = $1
	`

	message := &domain.ContactMessage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&message.ID,
		&message.Name,
		&message.Email,
		&message.Subject,
		&message.Message,
		&message.Status,
		&message.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrContactMessageNotFound
		}
		return nil, fmt.Errorf("failed to find contact message by ID: %w", err)
	}

	return message, nil
}

// List retrieves contact messages, optionally filtered by status, newest first
func (r *contactRepository) List(ctx context.Context, status *domain.ContactStatus) ([]*domain.ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, status, created_at
		FROM contact_messages
	`
	args := []interface{}{}

	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.ContactMessage{}
	for rows.Next() {
		message := &domain.ContactMessage{}
		err := rows.Scan(
			&message.ID,
			&message.Name,
			&message.Email,
			&message.Subject,
			&message.Message,
			&message.Status,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact messages: %w", err)
	}

	return messages, nil
}

// UpdateStatusFrom performs a compare-and-set status update
func (r *contactRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.ContactStatus) error {
	query := `UPDATE contact_messages SET status = $2 WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, id, to, from)
	if err != nil {
		return fmt.Errorf("failed to update contact message status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrContactMessageNotFound
	}

	return nil
}

// Delete removes a contact message
func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM contact_messages WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrContactMessageNotFound
	}

	return nil
}
