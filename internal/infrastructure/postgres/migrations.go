package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS attendance_logs (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL,
		at         TIMESTAMPTZ NOT NULL,
		day        DATE NOT NULL,
		direction  TEXT NOT NULL CHECK (direction IN ('in', 'out')),
		method     TEXT NOT NULL CHECK (method IN ('wifi', 'gps', 'manual')),
		ip         TEXT,
		latitude   DOUBLE PRECISION,
		longitude  DOUBLE PRECISION,
		reason     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS attendance_logs_user_at_idx ON attendance_logs (user_id, at DESC)`,
	`CREATE TABLE IF NOT EXISTS disconnect_events (
		user_id    TEXT NOT NULL,
		day        DATE NOT NULL,
		count      INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_days (
		user_id    TEXT NOT NULL,
		day        DATE NOT NULL,
		half_day   BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, day)
	)`,
}

// Migrate создает таблицы и индексы, если их еще нет. Повторный запуск безопасен.
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := r.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}
