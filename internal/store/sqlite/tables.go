package sqlite

import (
	"context"
	"fmt"
	"strings"

	"soulminer/internal/store"
)

func (c *Client) WriteTable(ctx context.Context, t store.Table) (int64, error) {
	if err := store.ValidateTable(t); err != nil {
		return 0, err
	}
	name, _ := store.QuoteIdent(t.Name)

	cols := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i], _ = store.QuoteIdent(col)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return 0, fmt.Errorf("dropping table %s: %w", t.Name, err)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s INTEGER PRIMARY KEY, %s TEXT)",
		name, store.RowNumColumn, strings.Join(cols, " TEXT, "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return 0, fmt.Errorf("creating table %s: %w", t.Name, err)
	}

	placeholders := strings.Repeat(", ?", len(cols))
	insert := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?%s)",
		name, store.RowNumColumn, strings.Join(cols, ", "), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("preparing insert into %s: %w", t.Name, err)
	}
	defer stmt.Close()

	args := make([]any, len(cols)+1)
	for i, row := range t.Rows {
		args[0] = i
		for j, v := range row {
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("inserting row %d into %s: %w", i, t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing table %s: %w", t.Name, err)
	}
	return int64(len(t.Rows)), nil
}

func (c *Client) WriteClasses(ctx context.Context, classes []store.ClassRow) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM classes"); err != nil {
		return fmt.Errorf("clearing classes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO classes (name, name_normalized, super, package, abstract, depth)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (name_normalized) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing class insert: %w", err)
	}
	defer stmt.Close()

	for _, class := range classes {
		abstract := 0
		if class.Abstract {
			abstract = 1
		}
		if _, err := stmt.ExecContext(ctx,
			class.Name,
			strings.ToLower(class.Name),
			class.Super,
			class.Package,
			abstract,
			class.Depth,
		); err != nil {
			return fmt.Errorf("inserting class %s: %w", class.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing classes: %w", err)
	}
	return nil
}
