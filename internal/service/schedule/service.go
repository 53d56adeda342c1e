package schedule

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

const (
	DefaultDaysAhead = 30
	MaxDaysAhead     = 90
)

// SettingsProvider supplies the current schedule configuration.
type SettingsProvider interface {
	Schedule(ctx context.Context) (*model.ScheduleConfig, error)
}

type Service interface {
	// GenerateSlots expands a schedule configuration into the ordered slot
	// labels of a working day.
	GenerateSlots(cfg *model.ScheduleConfig) []string
	// AvailableDates resolves the bookable dates within the next days days,
	// each with its still-free slot labels. Fully booked and uncurated
	// dates are omitted.
	AvailableDates(ctx context.Context, days int) ([]*model.DateAvailability, error)
}

type service struct {
	settings     SettingsProvider
	appointments repository.AppointmentRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(settings SettingsProvider, appointments repository.AppointmentRepository, logger zerolog.Logger) Service {
	return &service{
		settings:     settings,
		appointments: appointments,
		logger:       logger.With().Str("component", "schedule_service").Logger(),
		now:          time.Now,
	}
}

func (s *service) GenerateSlots(cfg *model.ScheduleConfig) []string {
	start, err := ParseClock(cfg.StartTime)
	if err != nil {
		return nil
	}
	end, err := ParseClock(cfg.EndTime)
	if err != nil {
		return nil
	}
	lunchStart, err := ParseClock(cfg.LunchStart)
	if err != nil {
		return nil
	}
	lunchEnd, err := ParseClock(cfg.LunchEnd)
	if err != nil {
		return nil
	}
	if cfg.AppointmentDuration <= 0 {
		return nil
	}

	slots := []string{}
	for t := start; t+cfg.AppointmentDuration <= end; t += cfg.AppointmentDuration {
		// A degenerate lunch window (start == end) suppresses nothing.
		if t >= lunchStart && t < lunchEnd {
			continue
		}
		slots = append(slots, formatClock(t))
	}
	return slots
}

func (s *service) AvailableDates(ctx context.Context, days int) ([]*model.DateAvailability, error) {
	if days <= 0 {
		days = DefaultDaysAhead
	}
	if days > MaxDaysAhead {
		days = MaxDaysAhead
	}

	cfg, err := s.settings.Schedule(ctx)
	if err != nil {
		return nil, err
	}

	slots := s.GenerateSlots(cfg)
	if len(slots) == 0 {
		return []*model.DateAvailability{}, nil
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := today.AddDate(0, 0, 1)
	to := today.AddDate(0, 0, days)

	booked, err := s.appointments.ActiveTimesByDate(ctx, from, to)
	if err != nil {
		return nil, errors.Internal(err)
	}

	result := []*model.DateAvailability{}
	for d := 1; d <= days; d++ {
		date := today.AddDate(0, 0, d).Format("2006-01-02")
		if !cfg.HasDate(date) {
			continue
		}
		free := subtract(slots, booked[date])
		if len(free) == 0 {
			continue
		}
		result = append(result, &model.DateAvailability{
			Date:           date,
			AvailableHours: free,
		})
	}

	s.logger.Debug().
		Int("days", days).
		Int("dates", len(result)).
		Msg("resolved availability window")

	return result, nil
}

// subtract returns the slots not present in taken, preserving order.
func subtract(slots, taken []string) []string {
	if len(taken) == 0 {
		out := make([]string, len(slots))
		copy(out, slots)
		return out
	}
	takenSet := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		takenSet[t] = struct{}{}
	}
	free := []string{}
	for _, slot := range slots {
		if _, ok := takenSet[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

// ParseClock converts an HH:MM label to minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return hours*60 + minutes, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SortedCopy returns a sorted copy of dates, used when callers need the
// curated list in calendar order.
func SortedCopy(dates []string) []string {
	out := make([]string, len(dates))
	copy(out, dates)
	sort.Strings(out)
	return out
}
