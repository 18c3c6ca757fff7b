// Package extract turns schema domains into output tables by walking the class
// hierarchy, resolving each class's attributes and, for combined domains,
// merging per-variant classes into one row.
package extract

import (
	"context"
	"fmt"
	"strings"

	"soulminer/internal/asset"
	"soulminer/internal/combine"
	"soulminer/internal/config"
	"soulminer/internal/hierarchy"
	"soulminer/internal/logger"
	"soulminer/internal/resolve"
)

// Table is one extracted domain, rows in extraction order.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	// Sources lists the classes that contributed a row.
	Sources []string
}

// Stats counts what a domain extraction considered.
type Stats struct {
	Classes int
	Rows    int
	Skipped int
}

// Variant is one resolved class headed for the combination engine.
type Variant struct {
	ID            int
	Class         string
	Key           string
	Discriminator string
	Result        *resolve.Result
}

type Extractor struct {
	index    *hierarchy.Index
	resolver *resolve.Resolver
	log      *logger.Logger
}

func New(index *hierarchy.Index, log *logger.Logger) *Extractor {
	log = logger.OrNop(log)
	return &Extractor{
		index:    index,
		resolver: resolve.New(index, log),
		log:      log,
	}
}

// Candidates lists the classes derived from any of the domain's base classes,
// first occurrence kept, abstract classes dropped when the domain asks for it.
func (e *Extractor) Candidates(d *config.Domain) []*asset.Class {
	seen := make(map[string]struct{})
	var out []*asset.Class
	for _, base := range d.BaseClasses {
		if _, ok := e.index.Class(base); !ok {
			e.log.Warn("base class not indexed", "domain", d.Name, "base", base)
			continue
		}
		for _, class := range e.index.DerivedClasses(base) {
			key := strings.ToLower(class.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if d.ExcludeAbstract && IsAbstract(class) {
				continue
			}
			out = append(out, class)
		}
	}
	return out
}

// IsAbstract reports classes flagged abstract or named as a base template
// (Foo_Base, Foo_Base_C).
func IsAbstract(class *asset.Class) bool {
	if class.Abstract {
		return true
	}
	name := strings.ToLower(class.Name)
	name = strings.TrimSuffix(name, "_c")
	return strings.HasSuffix(name, "_base")
}

// Domain extracts one domain into a table.
func (e *Extractor) Domain(ctx context.Context, d *config.Domain) (*Table, Stats, error) {
	var stats Stats
	query := Query(d)

	candidates := e.Candidates(d)
	stats.Classes = len(candidates)
	if len(candidates) == 0 {
		e.log.Warn("domain matched no classes", "domain", d.Name)
	}

	results := make([]*resolve.Result, 0, len(candidates))
	for _, class := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		result, err := e.resolver.Resolve(class, query)
		if err != nil {
			return nil, stats, fmt.Errorf("%s: resolving %s: %w", d.Name, class.Name, err)
		}
		if missing := result.MissingRequired(); len(missing) > 0 {
			e.log.Warn("required attribute unresolved, skipping class",
				"domain", d.Name,
				"class", class.Name,
				"missing", strings.Join(missing, ","),
			)
			stats.Skipped++
			continue
		}
		results = append(results, result)
	}

	table := &Table{Name: d.Table, Columns: d.Columns()}
	if d.Combine == nil {
		for _, result := range results {
			row := []string{result.Class}
			for _, slot := range d.Slots {
				row = append(row, result.Text(slot.Name))
			}
			table.Rows = append(table.Rows, row)
			table.Sources = append(table.Sources, result.Class)
		}
		stats.Rows = len(table.Rows)
		return table, stats, nil
	}

	rows, sources, skipped, err := e.combined(d, results)
	if err != nil {
		return nil, stats, err
	}
	table.Rows = rows
	table.Sources = sources
	stats.Rows = len(rows)
	stats.Skipped += skipped
	return table, stats, nil
}

func (e *Extractor) combined(d *config.Domain, results []*resolve.Result) ([][]string, []string, int, error) {
	c := d.Combine
	keySlot := c.Key
	if slot, ok := c.SlotKey(); ok {
		keySlot = slot
	}

	canonical := make(map[string]string, len(c.Variants))
	for _, v := range c.Variants {
		canonical[strings.ToLower(v)] = v
	}

	skipped := 0
	records := make([]Variant, 0, len(results))
	for i, result := range results {
		key := result.Text(keySlot)
		if key == "" {
			e.log.Warn("identity key empty, skipping class", "domain", d.Name, "class", result.Class, "key", c.Key)
			skipped++
			continue
		}
		disc := result.Text(c.Variant)
		if v, ok := canonical[strings.ToLower(disc)]; ok {
			disc = v
		}
		records = append(records, Variant{
			ID:            i,
			Class:         result.Class,
			Key:           key,
			Discriminator: disc,
			Result:        result,
		})
	}

	engine, err := combine.New(combine.Spec[Variant]{
		ID:      func(v Variant) int { return v.ID },
		Key:     func(v Variant) string { return v.Key },
		Variant: func(v Variant) string { return v.Discriminator },
		Name:    func(v Variant) string { return v.Class },
		Slots:   c.Variants,
	}, e.log.With("domain", d.Name))
	if err != nil {
		return nil, nil, 0, err
	}
	merged, err := engine.Combine(records)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: combining: %w", d.Name, err)
	}

	rows := make([][]string, 0, len(merged))
	var sources []string
	for _, rec := range merged {
		row, err := e.combinedRow(d, rec)
		if err != nil {
			e.log.Warn("variant descriptions disagree, skipping group",
				"domain", d.Name,
				"key", rec.Key,
				"error", err,
			)
			skipped++
			continue
		}
		rows = append(rows, row)
		for _, v := range rec.Records() {
			sources = append(sources, v.Class)
		}
	}
	return rows, sources, skipped, nil
}

func (e *Extractor) combinedRow(d *config.Domain, rec *combine.Combined[Variant]) ([]string, error) {
	c := d.Combine
	row := []string{rec.Key}

	ordered := make([]Variant, 0, len(c.Variants))
	for _, v := range c.Variants {
		variant, ok := rec.Slot(v)
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, variant.Class)
		ordered = append(ordered, variant)
	}

	for _, slot := range d.Slots {
		if strings.EqualFold(slot.Name, c.Variant) {
			continue
		}
		if c.MergeDescription && strings.EqualFold(slot.Name, resolve.SlotDescription) {
			var texts []string
			for _, v := range ordered {
				if text := v.Result.Text(slot.Name); text != "" {
					texts = append(texts, text)
				}
			}
			if len(texts) == 0 {
				row = append(row, "")
				continue
			}
			merged, err := combine.MergeText(texts)
			if err != nil {
				return nil, err
			}
			row = append(row, merged)
			continue
		}
		row = append(row, firstFilled(ordered, slot.Name))
	}
	return row, nil
}

func firstFilled(variants []Variant, slot string) string {
	for _, v := range variants {
		if text := v.Result.Text(slot); text != "" {
			return text
		}
	}
	return ""
}

// Query builds the resolver query for a domain's slots.
func Query(d *config.Domain) resolve.Query {
	slots := make([]resolve.Slot, 0, len(d.Slots))
	for _, slot := range d.Slots {
		slots = append(slots, resolve.Slot{
			Name:     slot.Name,
			Property: slot.Property,
			Kind:     resolve.Kind(strings.ToLower(slot.Kind)),
			Required: slot.Required,
		})
	}
	return resolve.Query{Slots: slots}
}
