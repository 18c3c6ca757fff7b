package store

import "time"

const RowNumColumn = "row_num"

type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// ClassRow is one indexed class as persisted in the classes table.
type ClassRow struct {
	Name     string
	Super    string
	Package  string
	Abstract bool
	Depth    int
}

type Run struct {
	ID         string
	Project    string
	StartedAt  time.Time
	FinishedAt time.Time
	Classes    int
	Tables     int
	Rows       int
	Skipped    int
	Errors     int
}
