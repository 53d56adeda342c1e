package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
)

const uniqueViolation = "23505"

// CreateWithEvents inserts the appointment and its outbox events in one
// transaction. The insert races against the partial unique index on active
// (date, time) pairs: losing the race affects zero rows and surfaces as
// ErrSlotTaken, so two concurrent bookings for one slot can never both win.
func (r *appointmentRepository) CreateWithEvents(ctx context.Context, apt *model.Appointment, events ...*model.OutboxEvent) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO appointments (
				id, date, time, consultation_type,
				client_name, client_email, client_phone, message,
				status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (date, time) WHERE status IN ('PENDING', 'CONFIRMED') DO NOTHING
		`
		result, err := tx.ExecContext(ctx, query,
			apt.ID,
			truncateToDay(apt.Date),
			apt.Time,
			apt.ConsultationType,
			apt.ClientName,
			apt.ClientEmail,
			apt.ClientPhone,
			apt.Message,
			apt.Status,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return repository.ErrSlotTaken
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrSlotTaken
		}

		for _, event := range events {
			if err := insertOutboxEventTx(ctx, tx, event); err != nil {
				return fmt.Errorf("failed to create outbox event: %w", err)
			}
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, date, time, consultation_type,
			   client_name, client_email, client_phone, message,
			   status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.Date != nil {
		where += fmt.Sprintf(" AND date = $%d", argCount)
		args = append(args, truncateToDay(*filters.Date))
		argCount++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM appointments" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := `
		SELECT id, date, time, consultation_type,
			   client_name, client_email, client_phone, message,
			   status, created_at, updated_at
		FROM appointments` + where +
		fmt.Sprintf(" ORDER BY date ASC, time ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

// TransitionStatus updates an appointment's status. When the target status
// re-occupies the slot (reactivation to PENDING), the conflict check runs
// inside the same transaction while the row is locked.
func (r *appointmentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, events ...*model.OutboxEvent) (*model.Appointment, error) {
	var apt model.Appointment

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, date, time, consultation_type,
				   client_name, client_email, client_phone, message,
				   status, created_at, updated_at
			FROM appointments
			WHERE id = $1
			FOR UPDATE
		`
		if err := tx.GetContext(ctx, &apt, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to lock appointment: %w", err)
		}

		if status.Active() && !apt.Status.Active() {
			var taken bool
			conflictQuery := `
				SELECT EXISTS (
					SELECT 1 FROM appointments
					WHERE date = $1 AND time = $2
					AND status IN ('PENDING', 'CONFIRMED')
					AND id != $3
				)
			`
			if err := tx.GetContext(ctx, &taken, conflictQuery, apt.Date, apt.Time, id); err != nil {
				return fmt.Errorf("failed to check slot conflict: %w", err)
			}
			if taken {
				return repository.ErrSlotTaken
			}
		}

		apt.Status = status
		apt.UpdatedAt = time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`,
			apt.Status, apt.UpdatedAt, id,
		); err != nil {
			return fmt.Errorf("failed to update appointment status: %w", err)
		}

		for _, event := range events {
			if err := insertOutboxEventTx(ctx, tx, event); err != nil {
				return fmt.Errorf("failed to create outbox event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

// ActiveTimesByDate returns the occupied slot labels for every date in
// [from, to], keyed by YYYY-MM-DD. Only active appointments occupy slots.
func (r *appointmentRepository) ActiveTimesByDate(ctx context.Context, from, to time.Time) (map[string][]string, error) {
	query := `
		SELECT date, time
		FROM appointments
		WHERE date >= $1 AND date <= $2
		AND status IN ('PENDING', 'CONFIRMED')
		ORDER BY date ASC, time ASC
	`
	rows, err := r.db.QueryxContext(ctx, query, truncateToDay(from), truncateToDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query occupied slots: %w", err)
	}
	defer rows.Close()

	occupied := make(map[string][]string)
	for rows.Next() {
		var date time.Time
		var timeLabel string
		if err := rows.Scan(&date, &timeLabel); err != nil {
			return nil, fmt.Errorf("failed to scan occupied slot: %w", err)
		}
		key := date.Format("2006-01-02")
		occupied[key] = append(occupied[key], timeLabel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read occupied slots: %w", err)
	}
	return occupied, nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM appointments"); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
