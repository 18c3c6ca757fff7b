package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"soulminer/internal/store"
)

func (c *Client) RecordRun(ctx context.Context, run store.Run) error {
	query := `
INSERT INTO runs (id, project, started_at, finished_at, class_count, table_count, row_count, skipped, error_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := c.pool.Exec(ctx, query,
		run.ID,
		run.Project,
		run.StartedAt,
		run.FinishedAt,
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
SELECT id::text, project, started_at, finished_at, class_count, table_count, row_count, skipped, error_count
FROM runs
ORDER BY started_at DESC
LIMIT $1
`
	rows, err := c.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Run, error) {
		var run store.Run
		err := row.Scan(&run.ID, &run.Project, &run.StartedAt, &run.FinishedAt,
			&run.Classes, &run.Tables, &run.Rows, &run.Skipped, &run.Errors)
		return run, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning runs: %w", err)
	}
	return runs, nil
}
