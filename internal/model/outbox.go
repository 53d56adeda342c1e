package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Event types written by the appointment and contact services.
const (
	EventAppointmentCreated       = "appointment_created"
	EventAppointmentStatusUpdated = "appointment_status_updated"
	EventContactCreated           = "contact_created"
)

// OutboxEvent is written in the same transaction as the domain change it
// describes and later published to the broker by the outbox processor.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// AppointmentEventPayload is the broker payload for appointment events.
type AppointmentEventPayload struct {
	Appointment Appointment       `json:"appointment"`
	NewStatus   AppointmentStatus `json:"new_status,omitempty"`
}

// ContactEventPayload is the broker payload for contact events.
type ContactEventPayload struct {
	Contact Contact `json:"contact"`
}
