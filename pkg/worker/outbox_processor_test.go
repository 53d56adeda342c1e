package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/metrics"
)

type memoryOutboxRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*model.OutboxEvent
}

func newMemoryOutboxRepo() *memoryOutboxRepo {
	return &memoryOutboxRepo{events: map[uuid.UUID]*model.OutboxEvent{}}
}

func (r *memoryOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	r.events[event.ID] = event
	return nil
}

func (r *memoryOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.OutboxEvent{}
	for _, e := range r.events {
		if e.Status == model.OutboxStatusPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.Status = model.OutboxStatusProcessed
	e.ProcessedAt = &now
	return nil
}

func (r *memoryOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = model.OutboxStatusFailed
	e.ErrorMessage = &errMsg
	e.RetryCount++
	return nil
}

func (r *memoryOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, e := range r.events {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.events, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published []interface{}
	err       error
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, message)
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

var metricsOnce sync.Once
var sharedMetrics *metrics.Metrics

// Prometheus registration is global, so the tests share one instance.
func testMetrics() *metrics.Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = metrics.NewMetrics("outbox_test")
	})
	return sharedMetrics
}

func newProcessor(repo repository.OutboxRepository, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		Channel:      "events",
		BatchSize:    10,
		PollInterval: time.Hour,
		RetryDelay:   time.Millisecond,
	}, zerolog.Nop(), testMetrics())
}

func seedEvent(t *testing.T, repo *memoryOutboxRepo) *model.OutboxEvent {
	t.Helper()
	event := &model.OutboxEvent{
		EventType: model.EventAppointmentCreated,
		Payload:   []byte(`{"appointment":{}}`),
	}
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	repo := newMemoryOutboxRepo()
	broker := &fakeBroker{}
	p := newProcessor(repo, broker)

	event := seedEvent(t, repo)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published, 1)
	assert.Equal(t, model.OutboxStatusProcessed, repo.events[event.ID].Status)
	assert.NotNil(t, repo.events[event.ID].ProcessedAt)
}

func TestProcessEventsMarksFailedAfterRetries(t *testing.T) {
	repo := newMemoryOutboxRepo()
	broker := &fakeBroker{err: assert.AnError}
	p := newProcessor(repo, broker)

	event := seedEvent(t, repo)
	require.NoError(t, p.processEvents(context.Background()))

	failed := repo.events[event.ID]
	assert.Equal(t, model.OutboxStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, 1, failed.RetryCount)
}

func TestProcessedEventsAreNotRepublished(t *testing.T) {
	repo := newMemoryOutboxRepo()
	broker := &fakeBroker{}
	p := newProcessor(repo, broker)

	seedEvent(t, repo)
	require.NoError(t, p.processEvents(context.Background()))
	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published, 1)
}

func TestDeleteProcessedBefore(t *testing.T) {
	repo := newMemoryOutboxRepo()
	broker := &fakeBroker{}
	p := newProcessor(repo, broker)

	event := seedEvent(t, repo)
	require.NoError(t, p.processEvents(context.Background()))

	deleted, err := repo.DeleteProcessedBefore(context.Background(), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.NotContains(t, repo.events, event.ID)
}
