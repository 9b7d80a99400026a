package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus is a closed enumeration of contact message states
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusResolved ContactStatus = "resolved"
)

// Valid reports whether s is a known contact status
func (s ContactStatus) Valid() bool {
	return s == ContactStatusNew || s == ContactStatusResolved
}

// CanTransitionTo reports whether moving from s to next is legal; the only
// transition is new -> resolved
func (s ContactStatus) CanTransitionTo(next ContactStatus) bool {
	return s == ContactStatusNew && next == ContactStatusResolved
}

// ContactMessage represents a public contact-us submission
type ContactMessage struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Email     string        `json:"email" db:"email"`
	Subject   string        `json:"subject" db:"subject"`
	Message   string        `json:"message" db:"message"`
	Status    ContactStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
