package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"soulminer/internal/store"
)

func (c *Client) WriteTable(ctx context.Context, t store.Table) (int64, error) {
	if err := store.ValidateTable(t); err != nil {
		return 0, err
	}
	name, _ := store.QuoteIdent(t.Name)

	cols := make([]string, len(t.Columns))
	copyCols := make([]string, 0, len(t.Columns)+1)
	copyCols = append(copyCols, store.RowNumColumn)
	for i, col := range t.Columns {
		cols[i], _ = store.QuoteIdent(col)
		copyCols = append(copyCols, strings.ToLower(col))
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return 0, fmt.Errorf("dropping table %s: %w", t.Name, err)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s INTEGER PRIMARY KEY, %s TEXT)",
		name, store.RowNumColumn, strings.Join(cols, " TEXT, "))
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return 0, fmt.Errorf("creating table %s: %w", t.Name, err)
	}

	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		values := make([]any, 0, len(row)+1)
		values = append(values, int32(i))
		for _, v := range row {
			values = append(values, v)
		}
		rows[i] = values
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{strings.ToLower(t.Name)}, copyCols, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copying rows into %s: %w", t.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing table %s: %w", t.Name, err)
	}
	return n, nil
}

func (c *Client) WriteClasses(ctx context.Context, classes []store.ClassRow) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM classes"); err != nil {
		return fmt.Errorf("clearing classes: %w", err)
	}

	query := `
INSERT INTO classes (name, name_normalized, super, package, abstract, depth)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name_normalized) DO NOTHING
`
	batch := &pgx.Batch{}
	for _, class := range classes {
		batch.Queue(query,
			class.Name,
			strings.ToLower(class.Name),
			class.Super,
			class.Package,
			class.Abstract,
			class.Depth,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting classes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing classes: %w", err)
	}
	return nil
}
