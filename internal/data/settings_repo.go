package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentwire/autoapply/internal/data/pgxutil"
	"github.com/talentwire/autoapply/internal/domain/model"
)

// ErrSettingNotFound is returned when a settings key has no row.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepo provides database operations for runtime-tunable settings.
type SettingsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSettingsRepo creates a new SettingsRepo with the given database connection.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Get returns the setting row for a key.
func (r *SettingsRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	var out model.Setting
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT key, value, description, updated_at FROM system_settings WHERE key = $1`, key)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Setting])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("get setting %q: %w", key, err)
	}
	return &out, nil
}

// UpsertParams carries one settings write.
type UpsertParams struct {
	Key         string
	Value       string
	Description string
}

// Upsert inserts or updates a setting row.
func (r *SettingsRepo) Upsert(ctx context.Context, p UpsertParams) error {
	if p.Key == "" {
		return errors.New("setting key is required")
	}
	now := r.timeProvider.Now()

	var description *string
	if p.Description != "" {
		description = &p.Description
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO system_settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    description = COALESCE(EXCLUDED.description, system_settings.description),
		    updated_at = EXCLUDED.updated_at`,
		p.Key, p.Value, description, now)
	if err != nil {
		return fmt.Errorf("upsert setting %q: %w", p.Key, err)
	}
	return nil
}

// All returns every settings row for the admin surface.
func (r *SettingsRepo) All(ctx context.Context) ([]*model.Setting, error) {
	var out []*model.Setting
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT key, value, description, updated_at FROM system_settings ORDER BY key`)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Setting])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return out, nil
}
