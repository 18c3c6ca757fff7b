// Package store persists mined tables, the class hierarchy and run records.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidIdent = errors.New("invalid identifier")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// WriteTable replaces the named table with the given rows in one
	// transaction. Rows keep their order in a row_num column.
	WriteTable(ctx context.Context, t Table) (int64, error)
	WriteClasses(ctx context.Context, classes []ClassRow) error
	RecordRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdent validates a table or column name and quotes it for both SQL
// dialects.
func QuoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdent, name)
	}
	return `"` + strings.ToLower(name) + `"`, nil
}

// ValidateTable checks names and row widths before anything touches the
// database.
func ValidateTable(t Table) error {
	if _, err := QuoteIdent(t.Name); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		if _, err := QuoteIdent(col); err != nil {
			return fmt.Errorf("table %s column: %w", t.Name, err)
		}
		key := strings.ToLower(col)
		if key == RowNumColumn {
			return fmt.Errorf("table %s column %s is reserved", t.Name, col)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("table %s has duplicate column %s", t.Name, col)
		}
		seen[key] = struct{}{}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s row %d has %d values, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// PositionalArgs orders RunSQL params keyed "1", "2", ... into arguments.
func PositionalArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for i := 1; i <= len(params); i++ {
		if val, ok := params[fmt.Sprint(i)]; ok {
			args = append(args, val)
		}
	}
	return args
}

// PlainValue turns driver values into JSON-friendly ones: text for byte
// slices and raw UUIDs, RFC 3339 for timestamps.
func PlainValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
