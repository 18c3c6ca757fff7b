// Package mine runs a full extraction: index the corpus, extract every
// domain in parallel, then write tables, CSV files, the class snapshot and a
// run record.
package mine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"soulminer/internal/asset"
	"soulminer/internal/config"
	"soulminer/internal/export"
	"soulminer/internal/extract"
	"soulminer/internal/graph"
	"soulminer/internal/hierarchy"
	"soulminer/internal/logger"
	"soulminer/internal/store"
)

// Run mines every selected domain. Per-domain failures land in Result.Errors;
// the returned error is reserved for failures that stop the whole run.
func Run(ctx context.Context, cfg *config.ProjectConfig, schema *config.Schema, source asset.Source, db Store, opts Options, log *logger.Logger) (*Result, error) {
	log = logger.OrNop(log)
	started := time.Now()

	domains, err := selectDomains(schema, opts.Domains)
	if err != nil {
		return nil, err
	}

	index, err := hierarchy.Build(ctx, source.Classes(ctx),
		hierarchy.WithLookup(source.Lookup),
		hierarchy.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("building class index: %w", err)
	}
	log.Info("class index built", "classes", index.Len(), "unresolved", len(index.Unresolved()))

	result := &Result{RunID: uuid.NewString(), Classes: index.Len()}

	if db != nil {
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		if err := db.WriteClasses(ctx, classRows(index)); err != nil {
			return nil, fmt.Errorf("writing classes: %w", err)
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = config.DefaultWorkers
	}
	progress := &syncProgress{p: opts.Progress}
	progress.Start(len(domains))

	extractor := extract.New(index, log)
	results := make([]DomainResult, len(domains))
	tables := make([]*extract.Table, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, domain := range domains {
		g.Go(func() error {
			dr := DomainResult{Domain: domain.Name, Table: domain.Table}
			table, stats, err := extractor.Domain(gctx, domain)
			dr.Stats = stats
			if err == nil {
				dr.CSV, err = write(gctx, db, opts.CSVDir, table)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Error("domain failed", "domain", domain.Name, "error", err)
				dr.Err = err
			} else {
				log.Info("domain mined", "domain", domain.Name, "rows", stats.Rows, "skipped", stats.Skipped)
				tables[i] = table
			}
			results[i] = dr
			progress.Done(domain.Name, stats, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	members := make(map[string][]string)
	for i, dr := range results {
		result.Domains = append(result.Domains, dr)
		result.Skipped += dr.Stats.Skipped
		if dr.Err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("domain %s: %w", dr.Domain, dr.Err))
			continue
		}
		result.Tables++
		result.Rows += dr.Stats.Rows
		for _, class := range tables[i].Sources {
			key := strings.ToLower(class)
			members[key] = append(members[key], dr.Domain)
		}
	}

	if opts.Graph != nil {
		if err := pushGraph(ctx, opts.Graph, index, members, opts.GraphBatchSize, log); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if db != nil {
		project := ""
		if cfg != nil {
			project = cfg.Project
		}
		run := store.Run{
			ID:         result.RunID,
			Project:    project,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Classes:    result.Classes,
			Tables:     result.Tables,
			Rows:       result.Rows,
			Skipped:    result.Skipped,
			Errors:     len(result.Errors),
		}
		if err := db.RecordRun(ctx, run); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("recording run: %w", err))
		}
	}

	return result, nil
}

func selectDomains(schema *config.Schema, names []string) ([]*config.Domain, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if len(names) == 0 {
		domains := make([]*config.Domain, 0, len(schema.Domains))
		for i := range schema.Domains {
			domains = append(domains, &schema.Domains[i])
		}
		return domains, nil
	}
	domains := make([]*config.Domain, 0, len(names))
	for _, name := range names {
		domain, ok := schema.DomainByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown domain: %s", name)
		}
		domains = append(domains, domain)
	}
	return domains, nil
}

func write(ctx context.Context, db Store, csvDir string, table *extract.Table) (string, error) {
	if db != nil {
		if _, err := db.WriteTable(ctx, store.Table{Name: table.Name, Columns: table.Columns, Rows: table.Rows}); err != nil {
			return "", err
		}
	}
	if csvDir == "" {
		return "", nil
	}
	return export.WriteCSV(csvDir, table)
}

func classRows(index *hierarchy.Index) []store.ClassRow {
	classes := index.Classes()
	rows := make([]store.ClassRow, 0, len(classes))
	for _, class := range classes {
		row := store.ClassRow{
			Name:     class.Name,
			Package:  class.Package,
			Abstract: class.Abstract,
		}
		if super, ok := index.Super(class.Name); ok {
			row.Super = super.Name
		}
		row.Depth, _ = index.Depth(class.Name)
		rows = append(rows, row)
	}
	return rows
}

// PushHierarchy mirrors the class index into the graph without mining. Each
// class is tagged with the domains whose base classes it derives from.
func PushHierarchy(ctx context.Context, client GraphClient, index *hierarchy.Index, schema *config.Schema, batchSize int, log *logger.Logger) error {
	log = logger.OrNop(log)
	extractor := extract.New(index, log)
	members := make(map[string][]string)
	for i := range schema.Domains {
		domain := &schema.Domains[i]
		for _, class := range extractor.Candidates(domain) {
			key := strings.ToLower(class.Name)
			members[key] = append(members[key], domain.Name)
		}
	}
	return pushGraph(ctx, client, index, members, batchSize, log)
}

func pushGraph(ctx context.Context, client GraphClient, index *hierarchy.Index, members map[string][]string, batchSize int, log *logger.Logger) error {
	if err := client.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	inputs := graph.ClassInputs(index, members)
	if err := client.UpsertClasses(ctx, inputs, batchSize); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	names := make([]string, 0, len(inputs))
	for _, input := range inputs {
		names = append(names, input.Name)
	}
	removed, err := client.RemoveStaleClasses(ctx, names)
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	log.Info("hierarchy pushed to graph", "classes", len(inputs), "removed", removed)
	return nil
}
