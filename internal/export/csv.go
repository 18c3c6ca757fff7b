// Package export writes extracted tables as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"soulminer/internal/extract"
)

// WriteCSV writes table to dir/<table name>.csv, header first, and returns the
// file path. The file is replaced atomically.
func WriteCSV(dir string, table *extract.Table) (string, error) {
	if table == nil || table.Name == "" {
		return "", fmt.Errorf("writing csv: table has no name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}

	path := filepath.Join(dir, table.Name+".csv")
	tmp, err := os.CreateTemp(dir, "."+table.Name+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Columns); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing csv header for %s: %w", table.Name, err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing csv rows for %s: %w", table.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	return path, nil
}
