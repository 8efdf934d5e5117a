package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// SettingsRepository implements sync.SettingsRepository: a string
// key/value table. Missing keys read as empty without error.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{db: store.DB()}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key=?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
