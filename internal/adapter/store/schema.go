package store

import (
	"context"
	"fmt"

	"github.com/arturoeanton/codelens-timemachine/internal/adapter/dialect"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS resources (
	id           BIGSERIAL PRIMARY KEY,
	resource_key TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL DEFAULT '',
	qualifier    TEXT NOT NULL,
	parent_id    BIGINT REFERENCES resources(id)
);
CREATE TABLE IF NOT EXISTS snapshots (
	id          BIGSERIAL PRIMARY KEY,
	resource_id BIGINT NOT NULL REFERENCES resources(id),
	root_id     BIGINT REFERENCES snapshots(id),
	is_last     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS snapshots_resource_last_idx ON snapshots (resource_id, is_last);
CREATE TABLE IF NOT EXISTS period_definitions (
	project_id     BIGINT NOT NULL REFERENCES resources(id),
	period_index   INTEGER NOT NULL,
	mode           TEXT NOT NULL,
	target_date    TIMESTAMPTZ,
	mode_parameter TEXT NOT NULL DEFAULT '',
	snapshot_id    BIGINT NOT NULL REFERENCES snapshots(id),
	PRIMARY KEY (project_id, period_index)
);`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS resources (
	id           INTEGER PRIMARY KEY,
	resource_key TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL DEFAULT '',
	qualifier    TEXT NOT NULL,
	parent_id    INTEGER REFERENCES resources(id)
);
CREATE TABLE IF NOT EXISTS snapshots (
	id          INTEGER PRIMARY KEY,
	resource_id INTEGER NOT NULL REFERENCES resources(id),
	root_id     INTEGER REFERENCES snapshots(id),
	is_last     BOOLEAN NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_resource_last_idx ON snapshots (resource_id, is_last);
CREATE TABLE IF NOT EXISTS period_definitions (
	project_id     INTEGER NOT NULL REFERENCES resources(id),
	period_index   INTEGER NOT NULL,
	mode           TEXT NOT NULL,
	target_date    DATETIME,
	mode_parameter TEXT NOT NULL DEFAULT '',
	snapshot_id    INTEGER NOT NULL REFERENCES snapshots(id),
	PRIMARY KEY (project_id, period_index)
);`

// Migrate creates the tables read by the store when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.dialect.ID == dialect.SQLite {
		schema = sqliteSchema
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate %s: %w", s.dialect.ID, err)
	}
	return nil
}
