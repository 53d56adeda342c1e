package notification

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/email"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/messaging"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/metrics"
)

// EventsChannel is the broker channel the outbox processor publishes to.
const EventsChannel = "events"

// SettingsProvider supplies the current notification preferences.
type SettingsProvider interface {
	Notifications(ctx context.Context) (*model.NotificationConfig, error)
}

// Dispatcher consumes outbox events from the broker and sends the matching
// emails. Delivery is fire-and-forget: a failed send is logged and counted,
// never retried against the booking flow.
type Dispatcher struct {
	broker   messaging.Broker
	email    email.Service
	settings SettingsProvider
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewDispatcher(
	broker messaging.Broker,
	emailSvc email.Service,
	settingsSvc SettingsProvider,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		broker:   broker,
		email:    emailSvc,
		settings: settingsSvc,
		metrics:  m,
		logger:   logger.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// Start subscribes to the events channel and dispatches until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) error {
	ch, err := d.broker.Subscribe(ctx, EventsChannel)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				d.handle(ctx, raw)
			}
		}
	}()
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, raw []byte) {
	var event model.OutboxEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		d.logger.Error().Err(err).Msg("failed to decode broker message")
		return
	}

	cfg, err := d.settings.Notifications(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to load notification settings")
		return
	}
	if !cfg.EmailNotifications {
		return
	}

	switch event.EventType {
	case model.EventAppointmentCreated:
		d.handleAppointmentCreated(ctx, &event, cfg)
	case model.EventAppointmentStatusUpdated:
		d.handleAppointmentStatusUpdated(ctx, &event)
	case model.EventContactCreated:
		d.handleContactCreated(ctx, &event, cfg)
	default:
		d.logger.Warn().Str("event_type", event.EventType).Msg("unknown event type")
	}
}

func (d *Dispatcher) handleAppointmentCreated(ctx context.Context, event *model.OutboxEvent, cfg *model.NotificationConfig) {
	var payload model.AppointmentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		d.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to decode appointment payload")
		return
	}

	d.deliver("appointment_confirmation", func() error {
		return d.email.SendAppointmentConfirmation(ctx, &payload.Appointment)
	})
	if cfg.NotifyNewAppointments {
		d.deliver("appointment_admin_notification", func() error {
			return d.email.SendAppointmentNotification(ctx, &payload.Appointment)
		})
	}
}

func (d *Dispatcher) handleAppointmentStatusUpdated(ctx context.Context, event *model.OutboxEvent) {
	var payload model.AppointmentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		d.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to decode appointment payload")
		return
	}

	if payload.NewStatus != model.AppointmentStatusConfirmed && payload.NewStatus != model.AppointmentStatusCancelled {
		return
	}
	d.deliver("appointment_status_update", func() error {
		return d.email.SendAppointmentStatusUpdate(ctx, &payload.Appointment, payload.NewStatus)
	})
}

func (d *Dispatcher) handleContactCreated(ctx context.Context, event *model.OutboxEvent, cfg *model.NotificationConfig) {
	var payload model.ContactEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		d.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to decode contact payload")
		return
	}

	d.deliver("contact_confirmation", func() error {
		return d.email.SendContactConfirmation(ctx, &payload.Contact)
	})
	if cfg.NotifyNewContacts {
		d.deliver("contact_admin_notification", func() error {
			return d.email.SendContactNotification(ctx, &payload.Contact)
		})
	}
}

func (d *Dispatcher) deliver(kind string, send func() error) {
	if err := send(); err != nil {
		d.metrics.NotificationsFailed.WithLabelValues(kind).Inc()
		d.logger.Error().Err(err).Str("kind", kind).Msg("failed to send notification email")
		return
	}
	d.metrics.NotificationsSent.WithLabelValues(kind).Inc()
	d.logger.Debug().Str("kind", kind).Msg("notification email sent")
}
