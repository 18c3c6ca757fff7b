package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS classes (
    name            TEXT NOT NULL,
    name_normalized TEXT PRIMARY KEY,
    super           TEXT DEFAULT '',
    package         TEXT DEFAULT '',
    abstract        BOOLEAN DEFAULT FALSE,
    depth           INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS runs (
    id          UUID PRIMARY KEY,
    project     TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    class_count INTEGER DEFAULT 0,
    table_count INTEGER DEFAULT 0,
    row_count   INTEGER DEFAULT 0,
    skipped     INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_classes_super ON classes (lower(super));
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs (started_at);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
