package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hiroyagi/yakumemo/internal/models"
)

type ConfigRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Get(ctx context.Context, key string) (*models.SystemConfig, error) {
	const query = `
SELECT config_key, config_value, updated_by, updated_at
FROM system_config
WHERE config_key = ?`
	var cfg models.SystemConfig
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&cfg.Key, &cfg.Value, &cfg.UpdatedBy, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("config %q: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get config", err)
	}
	return &cfg, nil
}

func (r *ConfigRepository) Set(ctx context.Context, key, value string, updatedBy int64) error {
	const query = `
INSERT INTO system_config (config_key, config_value, updated_by)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE config_value = VALUES(config_value), updated_by = VALUES(updated_by)`
	if _, err := r.db.ExecContext(ctx, query, key, value, updatedBy); err != nil {
		return wrapStore("set config", err)
	}
	return nil
}
