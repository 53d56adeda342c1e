package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
)

// Sentinel errors the services translate into the caller-facing taxonomy.
var (
	ErrNotFound  = errors.New("record not found")
	ErrSlotTaken = errors.New("slot already taken")
	ErrDuplicate = errors.New("record already exists")
)

type (
	// AppointmentRepository persists bookings. CreateWithEvents and
	// TransitionStatus are atomic: the appointment change and its outbox
	// events commit together, and the active-slot uniqueness invariant is
	// enforced inside the storage layer.
	AppointmentRepository interface {
		CreateWithEvents(ctx context.Context, apt *model.Appointment, events ...*model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error)
		TransitionStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, events ...*model.OutboxEvent) (*model.Appointment, error)
		ActiveTimesByDate(ctx context.Context, from, to time.Time) (map[string][]string, error)
		Count(ctx context.Context) (int64, error)
	}

	ContactRepository interface {
		CreateWithEvents(ctx context.Context, contact *model.Contact, events ...*model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
		List(ctx context.Context, filters *model.ContactFilters) ([]*model.Contact, int64, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) (*model.Contact, error)
		Count(ctx context.Context) (int64, error)
	}

	// SettingRepository stores one JSON document per settings key.
	SettingRepository interface {
		Get(ctx context.Context, key string) (*model.Setting, error)
		Upsert(ctx context.Context, key string, value []byte) error
		Count(ctx context.Context) (int64, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		List(ctx context.Context) ([]*model.User, error)
		Delete(ctx context.Context, id uuid.UUID) error
		Count(ctx context.Context) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
