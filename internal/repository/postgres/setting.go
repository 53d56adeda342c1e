package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
)

func (r *settingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = $1`
	var setting model.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return &setting, nil
}

// Upsert replaces the whole document for a key. Configuration writes are rare
// and admin-only; a race between two admins is last-writer-wins.
func (r *settingRepository) Upsert(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}
	return nil
}

func (r *settingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM settings"); err != nil {
		return 0, fmt.Errorf("failed to count settings: %w", err)
	}
	return count, nil
}
