package model

import (
	"time"

	"github.com/google/uuid"
)

type ContactStatus string

const (
	ContactStatusPending   ContactStatus = "PENDING"
	ContactStatusResponded ContactStatus = "RESPONDED"
	ContactStatusArchived  ContactStatus = "ARCHIVED"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusPending, ContactStatusResponded, ContactStatusArchived:
		return true
	}
	return false
}

// Contact is a message submitted through the public contact form.
type Contact struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Phone     string        `db:"phone" json:"phone,omitempty"`
	Message   string        `db:"message" json:"message"`
	Status    ContactStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}

type UpdateContactStatusRequest struct {
	Status ContactStatus `json:"status"`
}

type ContactFilters struct {
	Status ContactStatus
	Page   int
	Limit  int
}
