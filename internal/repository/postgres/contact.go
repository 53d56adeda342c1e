package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
)

func (r *contactRepository) CreateWithEvents(ctx context.Context, contact *model.Contact, events ...*model.OutboxEvent) error {
	contact.ID = uuid.New()
	contact.CreatedAt = time.Now()

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO contacts (id, name, email, phone, message, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, query,
			contact.ID,
			contact.Name,
			contact.Email,
			contact.Phone,
			contact.Message,
			contact.Status,
			contact.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create contact: %w", err)
		}

		for _, event := range events {
			if err := insertOutboxEventTx(ctx, tx, event); err != nil {
				return fmt.Errorf("failed to create outbox event: %w", err)
			}
		}
		return nil
	})
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	query := `
		SELECT id, name, email, phone, message, status, created_at
		FROM contacts
		WHERE id = $1
	`
	var contact model.Contact
	if err := r.db.GetContext(ctx, &contact, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, filters *model.ContactFilters) ([]*model.Contact, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM contacts"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	query := `
		SELECT id, name, email, phone, message, status, created_at
		FROM contacts` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)

	var contacts []*model.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, total, nil
}

func (r *contactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) (*model.Contact, error) {
	query := `
		UPDATE contacts
		SET status = $1
		WHERE id = $2
		RETURNING id, name, email, phone, message, status, created_at
	`
	var contact model.Contact
	if err := r.db.GetContext(ctx, &contact, query, status, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update contact status: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM contacts"); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}
