package notification

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/metrics"
)

type recordingEmail struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingEmail) record(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	return r.err
}

func (r *recordingEmail) SendAppointmentConfirmation(ctx context.Context, apt *model.Appointment) error {
	return r.record("appointment_confirmation")
}

func (r *recordingEmail) SendAppointmentNotification(ctx context.Context, apt *model.Appointment) error {
	return r.record("appointment_admin")
}

func (r *recordingEmail) SendAppointmentStatusUpdate(ctx context.Context, apt *model.Appointment, status model.AppointmentStatus) error {
	return r.record("status_update_" + string(status))
}

func (r *recordingEmail) SendContactConfirmation(ctx context.Context, contact *model.Contact) error {
	return r.record("contact_confirmation")
}

func (r *recordingEmail) SendContactNotification(ctx context.Context, contact *model.Contact) error {
	return r.record("contact_admin")
}

type stubSettings struct {
	cfg model.NotificationConfig
}

func (s *stubSettings) Notifications(ctx context.Context) (*model.NotificationConfig, error) {
	cfg := s.cfg
	return &cfg, nil
}

type channelBroker struct {
	ch chan []byte
}

func (b *channelBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.ch <- raw
	return nil
}

func (b *channelBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return b.ch, nil
}

func (b *channelBroker) Close() error { return nil }

var metricsOnce sync.Once
var sharedMetrics *metrics.Metrics

func testMetrics() *metrics.Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = metrics.NewMetrics("notification_test")
	})
	return sharedMetrics
}

func newDispatcher(emailSvc *recordingEmail, cfg model.NotificationConfig) *Dispatcher {
	return NewDispatcher(&channelBroker{ch: make(chan []byte, 10)}, emailSvc, &stubSettings{cfg: cfg}, testMetrics(), zerolog.Nop())
}

func defaultConfig() model.NotificationConfig {
	cfg := model.DefaultNotificationConfig()
	return cfg
}

func appointmentEvent(t *testing.T, eventType string, newStatus model.AppointmentStatus) []byte {
	t.Helper()
	payload, err := json.Marshal(model.AppointmentEventPayload{
		Appointment: model.Appointment{ClientEmail: "maria@example.com"},
		NewStatus:   newStatus,
	})
	require.NoError(t, err)
	raw, err := json.Marshal(model.OutboxEvent{EventType: eventType, Payload: payload})
	require.NoError(t, err)
	return raw
}

func contactEvent(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(model.ContactEventPayload{
		Contact: model.Contact{Email: "carlos@example.com"},
	})
	require.NoError(t, err)
	raw, err := json.Marshal(model.OutboxEvent{EventType: model.EventContactCreated, Payload: payload})
	require.NoError(t, err)
	return raw
}

func TestHandleAppointmentCreated(t *testing.T) {
	emailSvc := &recordingEmail{}
	d := newDispatcher(emailSvc, defaultConfig())

	d.handle(context.Background(), appointmentEvent(t, model.EventAppointmentCreated, ""))
	assert.Equal(t, []string{"appointment_confirmation", "appointment_admin"}, emailSvc.calls)
}

func TestHandleAppointmentCreatedAdminOptOut(t *testing.T) {
	cfg := defaultConfig()
	cfg.NotifyNewAppointments = false

	emailSvc := &recordingEmail{}
	d := newDispatcher(emailSvc, cfg)

	d.handle(context.Background(), appointmentEvent(t, model.EventAppointmentCreated, ""))
	assert.Equal(t, []string{"appointment_confirmation"}, emailSvc.calls)
}

func TestHandleStatusUpdated(t *testing.T) {
	t.Run("confirmed sends an update", func(t *testing.T) {
		emailSvc := &recordingEmail{}
		d := newDispatcher(emailSvc, defaultConfig())

		d.handle(context.Background(), appointmentEvent(t, model.EventAppointmentStatusUpdated, model.AppointmentStatusConfirmed))
		assert.Equal(t, []string{"status_update_CONFIRMED"}, emailSvc.calls)
	})

	t.Run("completed is silent", func(t *testing.T) {
		emailSvc := &recordingEmail{}
		d := newDispatcher(emailSvc, defaultConfig())

		d.handle(context.Background(), appointmentEvent(t, model.EventAppointmentStatusUpdated, model.AppointmentStatusCompleted))
		assert.Empty(t, emailSvc.calls)
	})
}

func TestHandleContactCreated(t *testing.T) {
	emailSvc := &recordingEmail{}
	d := newDispatcher(emailSvc, defaultConfig())

	d.handle(context.Background(), contactEvent(t))
	assert.Equal(t, []string{"contact_confirmation", "contact_admin"}, emailSvc.calls)
}

func TestEmailNotificationsDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.EmailNotifications = false

	emailSvc := &recordingEmail{}
	d := newDispatcher(emailSvc, cfg)

	d.handle(context.Background(), appointmentEvent(t, model.EventAppointmentCreated, ""))
	d.handle(context.Background(), contactEvent(t))
	assert.Empty(t, emailSvc.calls)
}

func TestSendFailureDoesNotPanic(t *testing.T) {
	emailSvc := &recordingEmail{err: assert.AnError}
	d := newDispatcher(emailSvc, defaultConfig())

	d.handle(context.Background(), appointmentEvent(t, model.EventAppointmentCreated, ""))
	assert.NotEmpty(t, emailSvc.calls)
}

func TestMalformedMessageIsIgnored(t *testing.T) {
	emailSvc := &recordingEmail{}
	d := newDispatcher(emailSvc, defaultConfig())

	d.handle(context.Background(), []byte("{not json"))
	assert.Empty(t, emailSvc.calls)
}

func TestStartConsumesFromBroker(t *testing.T) {
	emailSvc := &recordingEmail{}
	broker := &channelBroker{ch: make(chan []byte, 10)}
	d := NewDispatcher(broker, emailSvc, &stubSettings{cfg: defaultConfig()}, testMetrics(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, d.Start(ctx))

	require.NoError(t, broker.Publish(ctx, EventsChannel, json.RawMessage(contactEvent(t))))

	assert.Eventually(t, func() bool {
		emailSvc.mu.Lock()
		defer emailSvc.mu.Unlock()
		return len(emailSvc.calls) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
