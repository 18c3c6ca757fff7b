package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const memoryPath = ":memory:"

// target is a parsed sqlite:// DSN: the database file and the driver query
// string passed through untouched.
type target struct {
	path  string
	query string
}

func (t target) driverDSN() string {
	if t.query == "" {
		return t.path
	}
	return t.path + "?" + t.query
}

func (t target) inMemory() bool {
	return t.path == memoryPath
}

// parseDSN accepts sqlite://:memory:, sqlite:///abs/path.db and
// sqlite://relative/path.db, each optionally followed by ?driver_params.
// Relative paths are cleaned and kept relative to the working directory.
func parseDSN(dsn string) (target, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dsn), "sqlite://")
	if !ok {
		return target{}, fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}

	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return target{}, fmt.Errorf("sqlite DSN has no database path")
	}
	if path == memoryPath {
		return target{path: memoryPath, query: query}, nil
	}

	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return target{}, fmt.Errorf("unescaping path: %w", err)
	}
	path = filepath.Clean(unescaped)
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, ".") {
		path = "." + string(filepath.Separator) + path
	}

	return target{path: path, query: query}, nil
}
