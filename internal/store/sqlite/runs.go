package sqlite

import (
	"context"
	"fmt"
	"time"

	"soulminer/internal/store"
)

func (c *Client) RecordRun(ctx context.Context, run store.Run) error {
	query := `
	INSERT INTO runs (id, project, started_at, finished_at, class_count, table_count, row_count, skipped, error_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
		run.ID,
		run.Project,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Classes,
		run.Tables,
		run.Rows,
		run.Skipped,
		run.Errors,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

func (c *Client) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
	SELECT id, project, started_at, finished_at, class_count, table_count, row_count, skipped, error_count
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?
	`
	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.Project, &started, &finished,
			&run.Classes, &run.Tables, &run.Rows, &run.Skipped, &run.Errors); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing run start: %w", err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing run finish: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
