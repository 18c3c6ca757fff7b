package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS classes (
		name            TEXT NOT NULL,
		name_normalized TEXT NOT NULL PRIMARY KEY,
		super           TEXT DEFAULT '',
		package         TEXT DEFAULT '',
		abstract        INTEGER DEFAULT 0,
		depth           INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		project     TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		class_count INTEGER DEFAULT 0,
		table_count INTEGER DEFAULT 0,
		row_count   INTEGER DEFAULT 0,
		skipped     INTEGER DEFAULT 0,
		error_count INTEGER DEFAULT 0
	);

	-- super lookups back the derived-class queries
	CREATE INDEX IF NOT EXISTS idx_classes_super ON classes (lower(super));
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs (started_at);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
