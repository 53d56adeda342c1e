package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/schedule"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/settings"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

const phoneDigits = 10

// EventCreator pushes confirmed appointments to an external calendar. The
// call is best effort: a failure is logged and never blocks the transition.
type EventCreator interface {
	CreateEvent(ctx context.Context, apt *model.Appointment) (string, error)
}

type Service interface {
	Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
}

type service struct {
	appointments repository.AppointmentRepository
	settings     settings.Service
	schedule     schedule.Service
	calendar     EventCreator
	validate     *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	settingsSvc settings.Service,
	scheduleSvc schedule.Service,
	calendar EventCreator,
	logger zerolog.Logger,
) Service {
	return &service{
		appointments: appointments,
		settings:     settingsSvc,
		schedule:     scheduleSvc,
		calendar:     calendar,
		validate:     validator.New(),
		logger:       logger.With().Str("component", "appointment_service").Logger(),
		now:          time.Now,
	}
}

// allowedTransitions is the appointment status state machine. COMPLETED is
// terminal; reactivating a CANCELLED appointment re-runs the slot conflict
// check inside the repository transaction.
var allowedTransitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusPending:   {model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled},
	model.AppointmentStatusConfirmed: {model.AppointmentStatusCancelled, model.AppointmentStatusCompleted},
	model.AppointmentStatusCancelled: {model.AppointmentStatusPending},
	model.AppointmentStatusCompleted: {},
}

func transitionAllowed(from, to model.AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// parseBookingDate accepts a plain calendar date or a full RFC3339 timestamp,
// which the booking form sends, and truncates it to the day.
func parseBookingDate(raw string) (time.Time, string, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, raw, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, "", err
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day, day.Format("2006-01-02"), nil
}

func (s *service) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	apt := &model.Appointment{
		ID:               uuid.New(),
		Date:             date,
		Time:             req.Time,
		ConsultationType: req.ConsultationType,
		ClientName:       strings.TrimSpace(req.ClientName),
		ClientEmail:      strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientPhone:      normalizePhone(req.ClientPhone),
		Message:          strings.TrimSpace(req.Message),
		Status:           model.AppointmentStatusPending,
	}

	event, err := appointmentEvent(model.EventAppointmentCreated, apt, "")
	if err != nil {
		return nil, errors.Internal(err)
	}

	if err := s.appointments.CreateWithEvents(ctx, apt, event); err != nil {
		if err == repository.ErrSlotTaken {
			return nil, errors.Conflict("the selected time slot is no longer available")
		}
		return nil, errors.Internal(err)
	}

	s.logger.Info().
		Str("appointment_id", apt.ID.String()).
		Str("date", apt.DateOnly()).
		Str("time", apt.Time).
		Msg("appointment booked")

	return apt, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("appointment")
		}
		return nil, errors.Internal(err)
	}
	return apt, nil
}

func (s *service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, errors.Validation("invalid status filter",
			errors.FieldError{Field: "status", Message: "unknown status"})
	}

	appointments, total, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return appointments, total, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, errors.Validation("invalid status",
			errors.FieldError{Field: "status", Message: "unknown status"})
	}

	current, err := s.appointments.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("appointment")
		}
		return nil, errors.Internal(err)
	}

	if current.Status == status {
		return current, nil
	}
	if !transitionAllowed(current.Status, status) {
		return nil, errors.Conflict(fmt.Sprintf(
			"cannot change status from %s to %s", current.Status, status))
	}

	var events []*model.OutboxEvent
	if status == model.AppointmentStatusConfirmed || status == model.AppointmentStatusCancelled {
		event, eerr := appointmentEvent(model.EventAppointmentStatusUpdated, current, status)
		if eerr != nil {
			return nil, errors.Internal(eerr)
		}
		events = append(events, event)
	}

	apt, err := s.appointments.TransitionStatus(ctx, id, status, events...)
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			return nil, errors.NotFound("appointment")
		case repository.ErrSlotTaken:
			return nil, errors.Conflict("the appointment's time slot has since been taken")
		default:
			return nil, errors.Internal(err)
		}
	}

	if status == model.AppointmentStatusConfirmed && s.calendar != nil {
		if link, cerr := s.calendar.CreateEvent(ctx, apt); cerr != nil {
			s.logger.Warn().Err(cerr).
				Str("appointment_id", apt.ID.String()).
				Msg("calendar event creation failed")
		} else if link != "" {
			s.logger.Info().
				Str("appointment_id", apt.ID.String()).
				Str("meet_link", link).
				Msg("calendar event created")
		}
	}

	return apt, nil
}

// validateRequest rebuilds the validation snapshot on every call: the
// schedule and consultation types are re-read so configuration changes take
// effect immediately.
func (s *service) validateRequest(ctx context.Context, req *model.CreateAppointmentRequest) error {
	details := []errors.FieldError{}

	if err := s.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				details = append(details, errors.FieldError{
					Field:   fieldName(ve.Field()),
					Message: validationMessage(ve),
				})
			}
		} else {
			return errors.Internal(err)
		}
	}

	if req.ClientPhone != "" && len(normalizePhone(req.ClientPhone)) != phoneDigits {
		details = append(details, errors.FieldError{
			Field:   "clientPhone",
			Message: "must contain exactly 10 digits",
		})
	}

	date, canonical, dateErr := parseBookingDate(req.Date)
	if req.Date != "" && dateErr != nil {
		details = append(details, errors.FieldError{
			Field:   "date",
			Message: "must be an ISO date",
		})
	}
	if dateErr == nil {
		req.Date = canonical
	}

	if len(details) > 0 {
		return errors.Validation("invalid appointment request", details...)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !date.After(today) {
		details = append(details, errors.FieldError{
			Field:   "date",
			Message: "must be a future date",
		})
	}

	cfg, err := s.settings.Schedule(ctx)
	if err != nil {
		return err
	}
	if !cfg.HasDate(req.Date) {
		details = append(details, errors.FieldError{
			Field:   "date",
			Message: "date is not available for booking",
		})
	}

	if !slotExists(s.schedule.GenerateSlots(cfg), req.Time) {
		details = append(details, errors.FieldError{
			Field:   "time",
			Message: "time is not a valid slot",
		})
	}

	active, err := s.settings.ActiveConsultations(ctx)
	if err != nil {
		return err
	}
	if !consultationOffered(active, req.ConsultationType) {
		details = append(details, errors.FieldError{
			Field:   "consultationType",
			Message: "consultation type is not offered",
		})
	}

	if len(details) > 0 {
		return errors.Validation("invalid appointment request", details...)
	}
	return nil
}

func slotExists(slots []string, label string) bool {
	for _, slot := range slots {
		if slot == label {
			return true
		}
	}
	return false
}

func consultationOffered(types []model.ConsultationType, name string) bool {
	for _, ct := range types {
		if ct.Name == name {
			return true
		}
	}
	return false
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func appointmentEvent(eventType string, apt *model.Appointment, newStatus model.AppointmentStatus) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(model.AppointmentEventPayload{
		Appointment: *apt,
		NewStatus:   newStatus,
	})
	if err != nil {
		return nil, err
	}
	return &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}, nil
}

func fieldName(structField string) string {
	switch structField {
	case "Date":
		return "date"
	case "Time":
		return "time"
	case "ConsultationType":
		return "consultationType"
	case "ClientName":
		return "clientName"
	case "ClientEmail":
		return "clientEmail"
	case "ClientPhone":
		return "clientPhone"
	case "Message":
		return "message"
	}
	return structField
}

func validationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	}
	return "is invalid"
}
