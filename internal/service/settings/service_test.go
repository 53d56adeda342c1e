package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

type memorySettingRepo struct {
	mu      sync.Mutex
	docs    map[string][]byte
	getHits int
}

func newMemorySettingRepo() *memorySettingRepo {
	return &memorySettingRepo{docs: map[string][]byte{}}
}

func (r *memorySettingRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getHits++
	value, ok := r.docs[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Setting{Key: key, Value: value, UpdatedAt: time.Now()}, nil
}

func (r *memorySettingRepo) Upsert(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[key] = value
	return nil
}

func (r *memorySettingRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.docs)), nil
}

func newTestService(repo repository.SettingRepository) Service {
	return NewService(Repositories{Settings: repo}, zerolog.Nop())
}

func TestScheduleLazyDefault(t *testing.T) {
	repo := newMemorySettingRepo()
	svc := newTestService(repo)

	cfg, err := svc.Schedule(context.Background())
	require.NoError(t, err)

	def := model.DefaultScheduleConfig()
	assert.Equal(t, def.StartTime, cfg.StartTime)
	assert.Equal(t, def.EndTime, cfg.EndTime)
	assert.Equal(t, def.AppointmentDuration, cfg.AppointmentDuration)

	// The default was persisted, not just returned.
	_, ok := repo.docs[model.SettingKeySchedule]
	assert.True(t, ok)
}

func TestScheduleRoundTrip(t *testing.T) {
	svc := newTestService(newMemorySettingRepo())
	ctx := context.Background()

	cfg := model.DefaultScheduleConfig()
	cfg.StartTime = "08:00"
	cfg.AvailableDates = []string{"2026-04-02", "2026-04-01"}
	require.NoError(t, svc.UpdateSchedule(ctx, &cfg))

	got, err := svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:00", got.StartTime)
	// Curated dates come back sorted.
	assert.Equal(t, []string{"2026-04-01", "2026-04-02"}, got.AvailableDates)
}

func TestUpdateScheduleValidation(t *testing.T) {
	svc := newTestService(newMemorySettingRepo())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.ScheduleConfig)
		field  string
	}{
		{"malformed start time", func(c *model.ScheduleConfig) { c.StartTime = "9am" }, "startTime"},
		{"end before start", func(c *model.ScheduleConfig) { c.StartTime = "17:00"; c.EndTime = "09:00" }, "endTime"},
		{"lunch end before lunch start", func(c *model.ScheduleConfig) { c.LunchStart = "14:00"; c.LunchEnd = "12:00" }, "lunchEnd"},
		{"zero duration", func(c *model.ScheduleConfig) { c.AppointmentDuration = 0 }, "appointmentDuration"},
		{"malformed curated date", func(c *model.ScheduleConfig) { c.AvailableDates = []string{"01/04/2026"} }, "availableDates[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultScheduleConfig()
			tt.mutate(&cfg)

			err := svc.UpdateSchedule(ctx, &cfg)
			require.Error(t, err)

			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.KindValidation, appErr.Kind)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}

	t.Run("degenerate lunch window is allowed", func(t *testing.T) {
		cfg := model.DefaultScheduleConfig()
		cfg.LunchStart = "12:00"
		cfg.LunchEnd = "12:00"
		assert.NoError(t, svc.UpdateSchedule(ctx, &cfg))
	})
}

func TestReadsAreCached(t *testing.T) {
	repo := newMemorySettingRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Schedule(ctx)
	require.NoError(t, err)
	hits := repo.getHits

	_, err = svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, hits, repo.getHits)
}

func TestWriteInvalidatesCache(t *testing.T) {
	repo := newMemorySettingRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Schedule(ctx)
	require.NoError(t, err)

	cfg := model.DefaultScheduleConfig()
	cfg.EndTime = "18:00"
	require.NoError(t, svc.UpdateSchedule(ctx, &cfg))

	got, err := svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, "18:00", got.EndTime)
}

func TestConsultations(t *testing.T) {
	svc := newTestService(newMemorySettingRepo())
	ctx := context.Background()

	t.Run("defaults on first read", func(t *testing.T) {
		types, err := svc.Consultations(ctx)
		require.NoError(t, err)
		assert.Len(t, types, 5)
	})

	t.Run("active filter", func(t *testing.T) {
		types, err := svc.Consultations(ctx)
		require.NoError(t, err)
		types[0].Active = false
		require.NoError(t, svc.UpdateConsultations(ctx, types))

		active, err := svc.ActiveConsultations(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 4)
		for _, ct := range active {
			assert.True(t, ct.Active)
		}
	})

	t.Run("rejects empty list", func(t *testing.T) {
		err := svc.UpdateConsultations(ctx, nil)
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		err := svc.UpdateConsultations(ctx, []model.ConsultationType{
			{ID: 1, Name: "Pensiones", Active: true},
			{ID: 2, Name: "Pensiones", Active: true},
		})
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})
}

func TestNotifications(t *testing.T) {
	svc := newTestService(newMemorySettingRepo())
	ctx := context.Background()

	cfg, err := svc.Notifications(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.EmailNotifications)

	cfg.ReminderHours = -1
	err = svc.UpdateNotifications(ctx, cfg)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}
