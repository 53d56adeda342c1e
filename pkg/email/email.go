package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
)

// Service sends the transactional emails of the booking flow. Every method is
// best-effort from the caller's point of view: failures are returned for
// logging but must never abort the operation that triggered them.
type Service interface {
	SendAppointmentConfirmation(ctx context.Context, apt *model.Appointment) error
	SendAppointmentNotification(ctx context.Context, apt *model.Appointment) error
	SendAppointmentStatusUpdate(ctx context.Context, apt *model.Appointment, status model.AppointmentStatus) error
	SendContactConfirmation(ctx context.Context, contact *model.Contact) error
	SendContactNotification(ctx context.Context, contact *model.Contact) error
}

type Config struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	BusinessName  string
	BusinessEmail string
	BusinessPhone string
}

type service struct {
	dialer *gomail.Dialer
	cfg    Config
}

func NewService(cfg Config) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
	}
}

var statusLabels = map[model.AppointmentStatus]string{
	model.AppointmentStatusConfirmed: "confirmada",
	model.AppointmentStatusCancelled: "cancelada",
	model.AppointmentStatusCompleted: "completada",
	model.AppointmentStatusPending:   "pendiente",
}

func (s *service) SendAppointmentConfirmation(_ context.Context, apt *model.Appointment) error {
	body, err := render(appointmentConfirmationTmpl, map[string]interface{}{
		"Appointment": apt,
		"Date":        apt.DateOnly(),
		"Business":    s.cfg,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Confirmación de Cita - %s", s.cfg.BusinessName)
	return s.send(apt.ClientEmail, subject, body)
}

func (s *service) SendAppointmentNotification(_ context.Context, apt *model.Appointment) error {
	body, err := render(appointmentNotificationTmpl, map[string]interface{}{
		"Appointment": apt,
		"Date":        apt.DateOnly(),
	})
	if err != nil {
		return err
	}
	return s.send(s.cfg.BusinessEmail, "Nueva Cita Agendada - Sistema de Citas", body)
}

func (s *service) SendAppointmentStatusUpdate(_ context.Context, apt *model.Appointment, status model.AppointmentStatus) error {
	label, ok := statusLabels[status]
	if !ok {
		return fmt.Errorf("no status label for %q", status)
	}
	body, err := render(appointmentStatusTmpl, map[string]interface{}{
		"Appointment": apt,
		"Date":        apt.DateOnly(),
		"Label":       label,
		"Confirmed":   status == model.AppointmentStatusConfirmed,
		"Cancelled":   status == model.AppointmentStatusCancelled,
		"Business":    s.cfg,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Cita %s - %s", label, s.cfg.BusinessName)
	return s.send(apt.ClientEmail, subject, body)
}

func (s *service) SendContactConfirmation(_ context.Context, contact *model.Contact) error {
	body, err := render(contactConfirmationTmpl, map[string]interface{}{
		"Contact":  contact,
		"Business": s.cfg,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Mensaje Recibido - %s", s.cfg.BusinessName)
	return s.send(contact.Email, subject, body)
}

func (s *service) SendContactNotification(_ context.Context, contact *model.Contact) error {
	body, err := render(contactNotificationTmpl, map[string]interface{}{
		"Contact": contact,
	})
	if err != nil {
		return err
	}
	return s.send(s.cfg.BusinessEmail, "Nuevo Mensaje de Contacto - Sistema Web", body)
}

func (s *service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}
