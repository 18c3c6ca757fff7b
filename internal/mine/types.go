package mine

import (
	"context"
	"sync"

	"soulminer/internal/extract"
	"soulminer/internal/graph"
	"soulminer/internal/store"
)

// Store is the part of store.Store a run writes to.
type Store interface {
	EnsureSchema(ctx context.Context) error
	WriteTable(ctx context.Context, t store.Table) (int64, error)
	WriteClasses(ctx context.Context, classes []store.ClassRow) error
	RecordRun(ctx context.Context, run store.Run) error
}

type GraphClient interface {
	EnsureIndexes(ctx context.Context) error
	UpsertClasses(ctx context.Context, classes []graph.ClassInput, batchSize int) error
	RemoveStaleClasses(ctx context.Context, current []string) (int64, error)
}

// Progress hears about each domain as it finishes. Calls are serialized.
type Progress interface {
	Start(total int)
	Done(domain string, stats extract.Stats, err error)
}

type Options struct {
	// Domains restricts the run to the named schema domains.
	Domains []string
	Workers int
	CSVDir  string
	Graph   GraphClient
	// GraphBatchSize is passed to UpsertClasses; zero uses the default.
	GraphBatchSize int
	Progress       Progress
}

type DomainResult struct {
	Domain string
	Table  string
	Stats  extract.Stats
	CSV    string
	Err    error
}

type Result struct {
	RunID   string
	Classes int
	Tables  int
	Rows    int
	Skipped int
	Domains []DomainResult
	Errors  []error
}

type syncProgress struct {
	mu sync.Mutex
	p  Progress
}

func (s *syncProgress) Start(total int) {
	if s.p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Start(total)
}

func (s *syncProgress) Done(domain string, stats extract.Stats, err error) {
	if s.p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Done(domain, stats, err)
}
