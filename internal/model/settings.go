package model

import "time"

// Settings are stored as one JSON document per key, created lazily from the
// defaults below on first read.
const (
	SettingKeySchedule      = "schedule"
	SettingKeyBusiness      = "business"
	SettingKeyConsultations = "consultations"
	SettingKeyNotifications = "notifications"
)

type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     []byte    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleConfig drives slot generation and availability. AvailableDates is an
// explicit admin opt-in list; a date absent from it is never bookable no
// matter which weekday it falls on.
type ScheduleConfig struct {
	WorkDays            []string `json:"workDays"`
	StartTime           string   `json:"startTime"`
	EndTime             string   `json:"endTime"`
	LunchStart          string   `json:"lunchStart"`
	LunchEnd            string   `json:"lunchEnd"`
	AppointmentDuration int      `json:"appointmentDuration"`
	AvailableDates      []string `json:"availableDates"`
}

// HasDate reports whether the given YYYY-MM-DD date has been curated as
// available.
func (c *ScheduleConfig) HasDate(date string) bool {
	for _, d := range c.AvailableDates {
		if d == date {
			return true
		}
	}
	return false
}

type ConsultationType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type BusinessConfig struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

type NotificationConfig struct {
	EmailNotifications    bool   `json:"emailNotifications"`
	ReminderHours         int    `json:"reminderHours"`
	AdminEmail            string `json:"adminEmail"`
	NotifyNewAppointments bool   `json:"notifyNewAppointments"`
	NotifyNewContacts     bool   `json:"notifyNewContacts"`
}

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		WorkDays:            []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		StartTime:           "09:00",
		EndTime:             "17:00",
		LunchStart:          "12:00",
		LunchEnd:            "14:00",
		AppointmentDuration: 60,
		AvailableDates:      []string{},
	}
}

func DefaultBusinessConfig() BusinessConfig {
	return BusinessConfig{
		Name:        "Dra. Angy Tatiana Garzón Fierro",
		Email:       "contacto@miabogada.com",
		Phone:       "+573177154643",
		Description: "Servicios legales especializados en derecho laboral y seguridad social",
	}
}

func DefaultConsultationTypes() []ConsultationType {
	return []ConsultationType{
		{ID: 1, Name: "Derecho Laboral", Description: "Consultas relacionadas con temas laborales", Active: true},
		{ID: 2, Name: "Seguridad Social", Description: "Pensiones y seguridad social", Active: true},
		{ID: 3, Name: "Despido Injustificado", Description: "Casos de despidos improcedentes", Active: true},
		{ID: 4, Name: "Pensiones", Description: "Trámites y consultas sobre pensiones", Active: true},
		{ID: 5, Name: "Accidentes Laborales", Description: "Casos de accidentes de trabajo", Active: true},
	}
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		EmailNotifications:    true,
		ReminderHours:         24,
		AdminEmail:            "admin@miabogada.com",
		NotifyNewAppointments: true,
		NotifyNewContacts:     true,
	}
}
