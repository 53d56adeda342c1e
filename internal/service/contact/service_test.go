package contact

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

type memoryContactRepo struct {
	contacts map[uuid.UUID]*model.Contact
	events   []*model.OutboxEvent
}

func newMemoryContactRepo() *memoryContactRepo {
	return &memoryContactRepo{contacts: map[uuid.UUID]*model.Contact{}}
}

func (r *memoryContactRepo) CreateWithEvents(ctx context.Context, contact *model.Contact, events ...*model.OutboxEvent) error {
	r.contacts[contact.ID] = contact
	r.events = append(r.events, events...)
	return nil
}

func (r *memoryContactRepo) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return contact, nil
}

func (r *memoryContactRepo) List(ctx context.Context, filters *model.ContactFilters) ([]*model.Contact, int64, error) {
	out := []*model.Contact{}
	for _, c := range r.contacts {
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *memoryContactRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) (*model.Contact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	contact.Status = status
	return contact, nil
}

func (r *memoryContactRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.contacts)), nil
}

func validRequest() *model.CreateContactRequest {
	return &model.CreateContactRequest{
		Name:    "Carlos Pérez",
		Email:   "Carlos@Example.com",
		Phone:   "3177154643",
		Message: "Necesito asesoría sobre mi liquidación laboral.",
	}
}

func TestCreate(t *testing.T) {
	repo := newMemoryContactRepo()
	svc := NewService(repo, zerolog.Nop())

	contact, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, model.ContactStatusPending, contact.Status)
	assert.Equal(t, "carlos@example.com", contact.Email)

	require.Len(t, repo.events, 1)
	assert.Equal(t, model.EventContactCreated, repo.events[0].EventType)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryContactRepo(), zerolog.Nop())

	tests := []struct {
		name   string
		mutate func(*model.CreateContactRequest)
	}{
		{"missing name", func(r *model.CreateContactRequest) { r.Name = "" }},
		{"bad email", func(r *model.CreateContactRequest) { r.Email = "not-an-email" }},
		{"message too short", func(r *model.CreateContactRequest) { r.Message = "hola" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			assert.True(t, errors.IsKind(err, errors.KindValidation))
		})
	}

	t.Run("phone is optional", func(t *testing.T) {
		req := validRequest()
		req.Phone = ""
		_, err := svc.Create(context.Background(), req)
		assert.NoError(t, err)
	})
}

func TestUpdateStatus(t *testing.T) {
	repo := newMemoryContactRepo()
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	contact, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, contact.ID, model.ContactStatusResponded)
	require.NoError(t, err)
	assert.Equal(t, model.ContactStatusResponded, updated.Status)

	_, err = svc.UpdateStatus(ctx, contact.ID, model.ContactStatus("BOGUS"))
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	_, err = svc.UpdateStatus(ctx, uuid.New(), model.ContactStatusArchived)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestListFiltersByStatus(t *testing.T) {
	repo := newMemoryContactRepo()
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	second := validRequest()
	second.Email = "otra@example.com"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, first.ID, model.ContactStatusArchived)
	require.NoError(t, err)

	contacts, total, err := svc.List(ctx, &model.ContactFilters{Status: model.ContactStatusArchived})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, contacts, 1)
	assert.Equal(t, first.ID, contacts[0].ID)
}
