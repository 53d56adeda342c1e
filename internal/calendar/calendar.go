package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/config"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/schedule"
)

// MonthInfo describes one calendar month for the booking UI. When the
// external calendar is unreachable or unconfigured the fields are computed
// locally and LocallyComputed is set.
type MonthInfo struct {
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	MonthName       string `json:"month_name"`
	DaysInMonth     int    `json:"days_in_month"`
	FirstWeekday    int    `json:"first_weekday"`
	CalendarWorking bool   `json:"calendar_working"`
	LocallyComputed bool   `json:"locally_computed"`
}

// Adapter is the external calendar integration. Both methods degrade
// gracefully: the booking flow never depends on the external service.
type Adapter interface {
	CreateEvent(ctx context.Context, apt *model.Appointment) (string, error)
	MonthInfo(ctx context.Context, year, month int) (*MonthInfo, error)
}

// New returns a Google Calendar adapter when credentials are configured and
// a local-only fallback otherwise.
func New(ctx context.Context, cfg config.CalendarConfig, logger zerolog.Logger) (Adapter, error) {
	if cfg.CredentialsFile == "" {
		logger.Info().Msg("no calendar credentials configured, using local fallback")
		return &localAdapter{timezone: cfg.Timezone}, nil
	}

	svc, err := gcalendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(gcalendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &googleAdapter{
		svc:        svc,
		calendarID: cfg.CalendarID,
		timezone:   cfg.Timezone,
		logger:     logger.With().Str("component", "calendar_adapter").Logger(),
	}, nil
}

type googleAdapter struct {
	svc        *gcalendar.Service
	calendarID string
	timezone   string
	logger     zerolog.Logger
}

func (a *googleAdapter) CreateEvent(ctx context.Context, apt *model.Appointment) (string, error) {
	start, err := a.slotStart(apt)
	if err != nil {
		return "", err
	}
	end := start.Add(time.Hour)

	event := &gcalendar.Event{
		Summary:     fmt.Sprintf("Consulta: %s", apt.ConsultationType),
		Description: fmt.Sprintf("Cliente: %s\nEmail: %s\nTeléfono: %s\n\n%s", apt.ClientName, apt.ClientEmail, apt.ClientPhone, apt.Message),
		Start:       &gcalendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: a.timezone},
		End:         &gcalendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: a.timezone},
		ConferenceData: &gcalendar.ConferenceData{
			CreateRequest: &gcalendar.CreateConferenceRequest{
				RequestId: apt.ID.String(),
				ConferenceSolutionKey: &gcalendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := a.svc.Events.Insert(a.calendarID, event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return created.HangoutLink, nil
}

func (a *googleAdapter) MonthInfo(ctx context.Context, year, month int) (*MonthInfo, error) {
	info, err := localMonthInfo(year, month, a.timezone)
	if err != nil {
		return nil, err
	}

	// A cheap reachability probe: if the calendar answers, the UI can show
	// the live integration as active.
	if _, perr := a.svc.Calendars.Get(a.calendarID).Context(ctx).Do(); perr != nil {
		a.logger.Warn().Err(perr).Msg("calendar unreachable, serving local month info")
		return info, nil
	}

	info.CalendarWorking = true
	info.LocallyComputed = false
	return info, nil
}

func (a *googleAdapter) slotStart(apt *model.Appointment) (time.Time, error) {
	loc, err := time.LoadLocation(a.timezone)
	if err != nil {
		loc = time.UTC
	}
	minutes, err := schedule.ParseClock(apt.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot label %q: %w", apt.Time, err)
	}
	d := apt.Date
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

// localAdapter serves month info without an external calendar and reports no
// meet link for confirmed appointments.
type localAdapter struct {
	timezone string
}

func (a *localAdapter) CreateEvent(ctx context.Context, apt *model.Appointment) (string, error) {
	return "", nil
}

func (a *localAdapter) MonthInfo(ctx context.Context, year, month int) (*MonthInfo, error) {
	return localMonthInfo(year, month, a.timezone)
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func localMonthInfo(year, month int, timezone string) (*MonthInfo, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	if year < 1970 || year > 2200 {
		return nil, fmt.Errorf("invalid year %d", year)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	// Day zero of the next month is the last day of this one.
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc)

	return &MonthInfo{
		Year:            year,
		Month:           month,
		MonthName:       monthNames[month-1],
		DaysInMonth:     last.Day(),
		FirstWeekday:    int(first.Weekday()),
		CalendarWorking: false,
		LocallyComputed: true,
	}, nil
}
