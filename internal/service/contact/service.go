package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateContactRequest) (*model.Contact, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, filters *model.ContactFilters) ([]*model.Contact, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) (*model.Contact, error)
}

type service struct {
	contacts repository.ContactRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(contacts repository.ContactRepository, logger zerolog.Logger) Service {
	return &service{
		contacts: contacts,
		validate: validator.New(),
		logger:   logger.With().Str("component", "contact_service").Logger(),
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateContactRequest) (*model.Contact, error) {
	if err := s.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			details := make([]errors.FieldError, 0, len(verrs))
			for _, ve := range verrs {
				details = append(details, errors.FieldError{
					Field:   strings.ToLower(ve.Field()[:1]) + ve.Field()[1:],
					Message: validationMessage(ve),
				})
			}
			return nil, errors.Validation("invalid contact request", details...)
		}
		return nil, errors.Internal(err)
	}

	contact := &model.Contact{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
		Status:  model.ContactStatusPending,
	}

	payload, err := json.Marshal(model.ContactEventPayload{Contact: *contact})
	if err != nil {
		return nil, errors.Internal(err)
	}
	event := &model.OutboxEvent{
		EventType: model.EventContactCreated,
		Payload:   payload,
	}

	if err := s.contacts.CreateWithEvents(ctx, contact, event); err != nil {
		return nil, errors.Internal(err)
	}

	s.logger.Info().
		Str("contact_id", contact.ID.String()).
		Msg("contact message received")

	return contact, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.contacts.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("contact")
		}
		return nil, errors.Internal(err)
	}
	return contact, nil
}

func (s *service) List(ctx context.Context, filters *model.ContactFilters) ([]*model.Contact, int64, error) {
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

	contacts, total, err := s.contacts.List(ctx, filters)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return contacts, total, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) (*model.Contact, error) {
	if !status.Valid() {
		return nil, errors.Validation("invalid status",
			errors.FieldError{Field: "status", Message: "unknown status"})
	}

	contact, err := s.contacts.UpdateStatus(ctx, id, status)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("contact")
		}
		return nil, errors.Internal(err)
	}
	return contact, nil
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
