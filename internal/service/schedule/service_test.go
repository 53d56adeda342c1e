package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
)

type stubSettings struct {
	cfg *model.ScheduleConfig
	err error
}

func (s *stubSettings) Schedule(ctx context.Context) (*model.ScheduleConfig, error) {
	return s.cfg, s.err
}

type stubAppointments struct {
	activeTimes map[string][]string
	err         error
}

func (s *stubAppointments) ActiveTimesByDate(ctx context.Context, from, to time.Time) (map[string][]string, error) {
	return s.activeTimes, s.err
}

func (s *stubAppointments) CreateWithEvents(ctx context.Context, apt *model.Appointment, events ...*model.OutboxEvent) error {
	panic("not implemented")
}

func (s *stubAppointments) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	panic("not implemented")
}

func (s *stubAppointments) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	panic("not implemented")
}

func (s *stubAppointments) TransitionStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, events ...*model.OutboxEvent) (*model.Appointment, error) {
	panic("not implemented")
}

func (s *stubAppointments) Count(ctx context.Context) (int64, error) {
	panic("not implemented")
}

func newTestService(cfg *model.ScheduleConfig, booked map[string][]string, now time.Time) *service {
	return &service{
		settings:     &stubSettings{cfg: cfg},
		appointments: &stubAppointments{activeTimes: booked},
		logger:       zerolog.Nop(),
		now:          func() time.Time { return now },
	}
}

func standardConfig(dates ...string) *model.ScheduleConfig {
	cfg := model.DefaultScheduleConfig()
	cfg.AvailableDates = dates
	return &cfg
}

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name     string
		cfg      model.ScheduleConfig
		expected []string
	}{
		{
			name: "standard day with lunch break",
			cfg: model.ScheduleConfig{
				StartTime: "09:00", EndTime: "17:00",
				LunchStart: "12:00", LunchEnd: "14:00",
				AppointmentDuration: 60,
			},
			expected: []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		},
		{
			name: "thirty minute slots",
			cfg: model.ScheduleConfig{
				StartTime: "09:00", EndTime: "12:00",
				LunchStart: "10:00", LunchEnd: "10:30",
				AppointmentDuration: 30,
			},
			expected: []string{"09:00", "09:30", "10:30", "11:00", "11:30"},
		},
		{
			name: "degenerate lunch suppresses nothing",
			cfg: model.ScheduleConfig{
				StartTime: "09:00", EndTime: "12:00",
				LunchStart: "10:00", LunchEnd: "10:00",
				AppointmentDuration: 60,
			},
			expected: []string{"09:00", "10:00", "11:00"},
		},
		{
			name: "slot that would overrun closing time is dropped",
			cfg: model.ScheduleConfig{
				StartTime: "09:00", EndTime: "10:30",
				LunchStart: "12:00", LunchEnd: "12:00",
				AppointmentDuration: 60,
			},
			expected: []string{"09:00"},
		},
		{
			name: "duration longer than the day yields no slots",
			cfg: model.ScheduleConfig{
				StartTime: "09:00", EndTime: "10:00",
				LunchStart: "12:00", LunchEnd: "12:00",
				AppointmentDuration: 120,
			},
			expected: []string{},
		},
		{
			name: "lunch spanning the whole day yields no slots",
			cfg: model.ScheduleConfig{
				StartTime: "09:00", EndTime: "17:00",
				LunchStart: "09:00", LunchEnd: "17:00",
				AppointmentDuration: 60,
			},
			expected: []string{},
		},
	}

	svc := newTestService(nil, nil, time.Now())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.GenerateSlots(&tt.cfg))
		})
	}
}

func TestGenerateSlotsInvalidConfig(t *testing.T) {
	svc := newTestService(nil, nil, time.Now())

	bad := model.ScheduleConfig{StartTime: "nine", EndTime: "17:00", LunchStart: "12:00", LunchEnd: "14:00", AppointmentDuration: 60}
	assert.Nil(t, svc.GenerateSlots(&bad))

	zeroDuration := model.ScheduleConfig{StartTime: "09:00", EndTime: "17:00", LunchStart: "12:00", LunchEnd: "14:00"}
	assert.Nil(t, svc.GenerateSlots(&zeroDuration))
}

func TestGenerateSlotsIdempotent(t *testing.T) {
	svc := newTestService(nil, nil, time.Now())
	cfg := model.DefaultScheduleConfig()

	first := svc.GenerateSlots(&cfg)
	second := svc.GenerateSlots(&cfg)
	assert.Equal(t, first, second)
}

func TestAvailableDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	tomorrow := "2026-03-11"
	dayAfter := "2026-03-12"

	t.Run("booked slots are removed per date", func(t *testing.T) {
		booked := map[string][]string{
			tomorrow: {"09:00", "14:00"},
		}
		svc := newTestService(standardConfig(tomorrow, dayAfter), booked, now)

		dates, err := svc.AvailableDates(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, dates, 2)

		assert.Equal(t, tomorrow, dates[0].Date)
		assert.Equal(t, []string{"10:00", "11:00", "15:00", "16:00"}, dates[0].AvailableHours)
		assert.Equal(t, dayAfter, dates[1].Date)
		assert.Equal(t, []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}, dates[1].AvailableHours)
	})

	t.Run("fully booked dates are omitted", func(t *testing.T) {
		booked := map[string][]string{
			tomorrow: {"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		}
		svc := newTestService(standardConfig(tomorrow, dayAfter), booked, now)

		dates, err := svc.AvailableDates(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, dates, 1)
		assert.Equal(t, dayAfter, dates[0].Date)
	})

	t.Run("uncurated dates never appear", func(t *testing.T) {
		svc := newTestService(standardConfig(dayAfter), nil, now)

		dates, err := svc.AvailableDates(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, dates, 1)
		assert.Equal(t, dayAfter, dates[0].Date)
	})

	t.Run("today is excluded from the window", func(t *testing.T) {
		today := "2026-03-10"
		svc := newTestService(standardConfig(today), nil, now)

		dates, err := svc.AvailableDates(context.Background(), 7)
		require.NoError(t, err)
		assert.Empty(t, dates)
	})

	t.Run("dates beyond the window are excluded", func(t *testing.T) {
		farOut := "2026-06-01"
		svc := newTestService(standardConfig(farOut), nil, now)

		dates, err := svc.AvailableDates(context.Background(), 7)
		require.NoError(t, err)
		assert.Empty(t, dates)
	})

	t.Run("results are in ascending date order", func(t *testing.T) {
		svc := newTestService(standardConfig(dayAfter, tomorrow), nil, now)

		dates, err := svc.AvailableDates(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, dates, 2)
		assert.Equal(t, tomorrow, dates[0].Date)
		assert.Equal(t, dayAfter, dates[1].Date)
	})

	t.Run("days parameter is clamped", func(t *testing.T) {
		svc := newTestService(standardConfig(tomorrow), nil, now)

		dates, err := svc.AvailableDates(context.Background(), 100000)
		require.NoError(t, err)
		require.Len(t, dates, 1)

		dates, err = svc.AvailableDates(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, dates, 1)
	})
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	for _, invalid := range []string{"", "9", "25:00", "09:60", "ab:cd", "09:00:00"} {
		_, err := ParseClock(invalid)
		assert.Error(t, err, invalid)
	}
}
