package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/schedule"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cachePurge   = 10 * time.Minute
	cachePrefix  = "settings:"
	maxDuration  = 480
	dateLayout   = "2006-01-02"
)

// BackupSnapshot is the payload of the admin backup endpoint: the settings
// documents plus record counts for every table.
type BackupSnapshot struct {
	GeneratedAt   time.Time              `json:"generated_at"`
	Counts        map[string]int64       `json:"counts"`
	Schedule      *model.ScheduleConfig  `json:"schedule"`
	Business      *model.BusinessConfig  `json:"business"`
	Consultations []model.ConsultationType `json:"consultations"`
}

type Service interface {
	Schedule(ctx context.Context) (*model.ScheduleConfig, error)
	UpdateSchedule(ctx context.Context, cfg *model.ScheduleConfig) error
	Business(ctx context.Context) (*model.BusinessConfig, error)
	UpdateBusiness(ctx context.Context, cfg *model.BusinessConfig) error
	Consultations(ctx context.Context) ([]model.ConsultationType, error)
	UpdateConsultations(ctx context.Context, types []model.ConsultationType) error
	// ActiveConsultations returns only the types currently offered, for the
	// public endpoint and for booking validation.
	ActiveConsultations(ctx context.Context) ([]model.ConsultationType, error)
	Notifications(ctx context.Context) (*model.NotificationConfig, error)
	UpdateNotifications(ctx context.Context, cfg *model.NotificationConfig) error
	Backup(ctx context.Context) (*BackupSnapshot, error)
}

type Repositories struct {
	Settings     repository.SettingRepository
	Appointments repository.AppointmentRepository
	Contacts     repository.ContactRepository
	Users        repository.UserRepository
}

type service struct {
	repos  Repositories
	cache  *gocache.Cache
	logger zerolog.Logger
}

func NewService(repos Repositories, logger zerolog.Logger) Service {
	return &service{
		repos:  repos,
		cache:  gocache.New(cacheTTL, cachePurge),
		logger: logger.With().Str("component", "settings_service").Logger(),
	}
}

// load reads one settings document, materializing the default on first read.
// Writes always go through save, which drops the cached copy.
func (s *service) load(ctx context.Context, key string, target interface{}, defaultValue interface{}) error {
	if cached, ok := s.cache.Get(cachePrefix + key); ok {
		return json.Unmarshal(cached.([]byte), target)
	}

	setting, err := s.repos.Settings.Get(ctx, key)
	if err == repository.ErrNotFound {
		raw, merr := json.Marshal(defaultValue)
		if merr != nil {
			return errors.Internal(merr)
		}
		if uerr := s.repos.Settings.Upsert(ctx, key, raw); uerr != nil {
			return errors.Internal(uerr)
		}
		s.logger.Info().Str("key", key).Msg("materialized default settings document")
		s.cache.Set(cachePrefix+key, raw, gocache.DefaultExpiration)
		return json.Unmarshal(raw, target)
	}
	if err != nil {
		return errors.Internal(err)
	}

	s.cache.Set(cachePrefix+key, setting.Value, gocache.DefaultExpiration)
	return json.Unmarshal(setting.Value, target)
}

func (s *service) save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Internal(err)
	}
	if err := s.repos.Settings.Upsert(ctx, key, raw); err != nil {
		return errors.Internal(err)
	}
	s.cache.Delete(cachePrefix + key)
	return nil
}

func (s *service) Schedule(ctx context.Context) (*model.ScheduleConfig, error) {
	cfg := &model.ScheduleConfig{}
	def := model.DefaultScheduleConfig()
	if err := s.load(ctx, model.SettingKeySchedule, cfg, &def); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *service) UpdateSchedule(ctx context.Context, cfg *model.ScheduleConfig) error {
	if err := validateSchedule(cfg); err != nil {
		return err
	}
	cfg.AvailableDates = schedule.SortedCopy(cfg.AvailableDates)
	return s.save(ctx, model.SettingKeySchedule, cfg)
}

func (s *service) Business(ctx context.Context) (*model.BusinessConfig, error) {
	cfg := &model.BusinessConfig{}
	def := model.DefaultBusinessConfig()
	if err := s.load(ctx, model.SettingKeyBusiness, cfg, &def); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *service) UpdateBusiness(ctx context.Context, cfg *model.BusinessConfig) error {
	if cfg.Name == "" {
		return errors.Validation("business name is required",
			errors.FieldError{Field: "name", Message: "must not be empty"})
	}
	return s.save(ctx, model.SettingKeyBusiness, cfg)
}

func (s *service) Consultations(ctx context.Context) ([]model.ConsultationType, error) {
	types := []model.ConsultationType{}
	if err := s.load(ctx, model.SettingKeyConsultations, &types, model.DefaultConsultationTypes()); err != nil {
		return nil, err
	}
	return types, nil
}

func (s *service) UpdateConsultations(ctx context.Context, types []model.ConsultationType) error {
	if len(types) == 0 {
		return errors.Validation("at least one consultation type is required")
	}
	seen := make(map[string]struct{}, len(types))
	for i, ct := range types {
		if ct.Name == "" {
			return errors.Validation("consultation type name is required",
				errors.FieldError{Field: fmt.Sprintf("types[%d].name", i), Message: "must not be empty"})
		}
		if _, dup := seen[ct.Name]; dup {
			return errors.Validation("duplicate consultation type",
				errors.FieldError{Field: fmt.Sprintf("types[%d].name", i), Message: "duplicated name"})
		}
		seen[ct.Name] = struct{}{}
	}
	return s.save(ctx, model.SettingKeyConsultations, types)
}

func (s *service) ActiveConsultations(ctx context.Context) ([]model.ConsultationType, error) {
	types, err := s.Consultations(ctx)
	if err != nil {
		return nil, err
	}
	active := []model.ConsultationType{}
	for _, ct := range types {
		if ct.Active {
			active = append(active, ct)
		}
	}
	return active, nil
}

func (s *service) Notifications(ctx context.Context) (*model.NotificationConfig, error) {
	cfg := &model.NotificationConfig{}
	def := model.DefaultNotificationConfig()
	if err := s.load(ctx, model.SettingKeyNotifications, cfg, &def); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *service) UpdateNotifications(ctx context.Context, cfg *model.NotificationConfig) error {
	if cfg.ReminderHours < 0 {
		return errors.Validation("reminder hours must not be negative",
			errors.FieldError{Field: "reminderHours", Message: "must be zero or positive"})
	}
	return s.save(ctx, model.SettingKeyNotifications, cfg)
}

func (s *service) Backup(ctx context.Context) (*BackupSnapshot, error) {
	counts := map[string]int64{}
	for name, counter := range map[string]func(context.Context) (int64, error){
		"appointments": s.repos.Appointments.Count,
		"contacts":     s.repos.Contacts.Count,
		"settings":     s.repos.Settings.Count,
		"users":        s.repos.Users.Count,
	} {
		n, err := counter(ctx)
		if err != nil {
			return nil, errors.Internal(err)
		}
		counts[name] = n
	}

	scheduleCfg, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	businessCfg, err := s.Business(ctx)
	if err != nil {
		return nil, err
	}
	consultations, err := s.Consultations(ctx)
	if err != nil {
		return nil, err
	}

	return &BackupSnapshot{
		GeneratedAt:   time.Now().UTC(),
		Counts:        counts,
		Schedule:      scheduleCfg,
		Business:      businessCfg,
		Consultations: consultations,
	}, nil
}

func validateSchedule(cfg *model.ScheduleConfig) error {
	details := []errors.FieldError{}

	clocks := map[string]string{
		"startTime":  cfg.StartTime,
		"endTime":    cfg.EndTime,
		"lunchStart": cfg.LunchStart,
		"lunchEnd":   cfg.LunchEnd,
	}
	parsed := map[string]int{}
	for field, value := range clocks {
		minutes, err := schedule.ParseClock(value)
		if err != nil {
			details = append(details, errors.FieldError{Field: field, Message: "must be in HH:MM format"})
			continue
		}
		parsed[field] = minutes
	}
	if len(details) > 0 {
		return errors.Validation("invalid schedule configuration", details...)
	}

	if parsed["startTime"] >= parsed["endTime"] {
		details = append(details, errors.FieldError{Field: "endTime", Message: "must be after startTime"})
	}
	if parsed["lunchStart"] > parsed["lunchEnd"] {
		details = append(details, errors.FieldError{Field: "lunchEnd", Message: "must not be before lunchStart"})
	}
	if cfg.AppointmentDuration <= 0 || cfg.AppointmentDuration > maxDuration {
		details = append(details, errors.FieldError{Field: "appointmentDuration", Message: "must be between 1 and 480 minutes"})
	}
	for i, date := range cfg.AvailableDates {
		if _, err := time.Parse(dateLayout, date); err != nil {
			details = append(details, errors.FieldError{Field: fmt.Sprintf("availableDates[%d]", i), Message: "must be in YYYY-MM-DD format"})
		}
	}
	if len(details) > 0 {
		return errors.Validation("invalid schedule configuration", details...)
	}
	return nil
}
