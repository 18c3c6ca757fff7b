package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"soulminer/internal/hierarchy"
)

const DefaultBatchSize = 500

type ClassInput struct {
	Name     string
	Super    string
	Package  string
	Abstract bool
	Depth    int
	Domains  []string
}

// ClassInputs flattens an index into upsert inputs in index order. domains maps
// lowercase class names to the domains that extracted them.
func ClassInputs(index *hierarchy.Index, domains map[string][]string) []ClassInput {
	classes := index.Classes()
	out := make([]ClassInput, 0, len(classes))
	for _, class := range classes {
		depth, _ := index.Depth(class.Name)
		super := ""
		if s, ok := index.Super(class.Name); ok {
			super = s.Name
		}
		out = append(out, ClassInput{
			Name:     class.Name,
			Super:    super,
			Package:  class.Package,
			Abstract: class.Abstract,
			Depth:    depth,
			Domains:  domains[strings.ToLower(class.Name)],
		})
	}
	return out
}

// UpsertClasses merges nodes for every class, then the INHERITS edges between
// them, batchSize rows per UNWIND.
func (c *Client) UpsertClasses(ctx context.Context, classes []ClassInput, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	nodes := `
UNWIND $rows AS row
MERGE (n:Class {name_normalized: row.name_normalized})
SET n.name = row.name,
    n.package = row.package,
    n.abstract = row.abstract,
    n.depth = row.depth,
    n.domains = row.domains,
    n.last_mined = datetime()
`
	edges := `
UNWIND $rows AS row
MATCH (n:Class {name_normalized: row.name_normalized})
OPTIONAL MATCH (n)-[old:INHERITS]->()
DELETE old
WITH n, row
WHERE row.super_normalized <> ''
MATCH (s:Class {name_normalized: row.super_normalized})
MERGE (n)-[:INHERITS]->(s)
`

	for _, query := range []string{nodes, edges} {
		for start := 0; start < len(classes); start += batchSize {
			end := min(start+batchSize, len(classes))
			rows := make([]map[string]any, 0, end-start)
			for _, class := range classes[start:end] {
				rows = append(rows, classRow(class))
			}
			if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
				_, err := tx.Run(ctx, query, map[string]any{"rows": rows})
				return nil, err
			}); err != nil {
				return fmt.Errorf("upserting classes: %w", err)
			}
		}
	}

	return nil
}

func classRow(class ClassInput) map[string]any {
	domains := class.Domains
	if domains == nil {
		domains = []string{}
	}
	return map[string]any{
		"name":             class.Name,
		"name_normalized":  strings.ToLower(class.Name),
		"super_normalized": strings.ToLower(class.Super),
		"package":          class.Package,
		"abstract":         class.Abstract,
		"depth":            class.Depth,
		"domains":          domains,
	}
}

// Descendants lists every class below base, by name.
func (c *Client) Descendants(ctx context.Context, base string) ([]string, error) {
	rows, err := c.RunCypher(ctx, `
MATCH (d:Class)-[:INHERITS*1..]->(b:Class {name_normalized: $base})
RETURN DISTINCT d.name AS name
ORDER BY name
`, map[string]any{"base": strings.ToLower(base)})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
