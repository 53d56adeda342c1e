package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

// Valid reports whether s is one of the recognized status labels.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Active reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// Appointment is a consultation booked against a single (date, time) slot.
// At most one appointment with an active status may exist per slot; the
// storage layer enforces this with a partial unique index.
type Appointment struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	Date             time.Time         `db:"date" json:"date"`
	Time             string            `db:"time" json:"time"`
	ConsultationType string            `db:"consultation_type" json:"consultation_type"`
	ClientName       string            `db:"client_name" json:"client_name"`
	ClientEmail      string            `db:"client_email" json:"client_email"`
	ClientPhone      string            `db:"client_phone" json:"client_phone"`
	Message          string            `db:"message" json:"message,omitempty"`
	Status           AppointmentStatus `db:"status" json:"status"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// DateOnly returns the appointment date formatted as YYYY-MM-DD.
func (a *Appointment) DateOnly() string {
	return a.Date.Format("2006-01-02")
}

type CreateAppointmentRequest struct {
	Date             string `json:"date" validate:"required"`
	Time             string `json:"time" validate:"required"`
	ConsultationType string `json:"consultationType" validate:"required"`
	ClientName       string `json:"clientName" validate:"required,min=2,max=100"`
	ClientEmail      string `json:"clientEmail" validate:"required,email"`
	ClientPhone      string `json:"clientPhone" validate:"required"`
	Message          string `json:"message" validate:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status"`
}

type AppointmentFilters struct {
	Status AppointmentStatus
	Date   *time.Time
	Page   int
	Limit  int
}

// DateAvailability lists the still-bookable slot labels for one calendar day.
type DateAvailability struct {
	Date           string   `json:"date"`
	AvailableHours []string `json:"availableHours"`
}
