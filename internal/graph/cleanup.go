package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// RemoveStaleClasses deletes :Class nodes whose names are not in current.
func (c *Client) RemoveStaleClasses(ctx context.Context, current []string) (int64, error) {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	normalized := make([]string, len(current))
	for i, name := range current {
		normalized[i] = strings.ToLower(name)
	}

	query := `
MATCH (n:Class)
WHERE NOT n.name_normalized IN $current
DETACH DELETE n
RETURN count(n) AS deleted
`

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"current": normalized})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			value, _ := res.Record().Get("deleted")
			if count, ok := value.(int64); ok {
				return count, nil
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return int64(0), nil
	})
	if err != nil {
		return 0, fmt.Errorf("removing stale classes: %w", err)
	}

	return result.(int64), nil
}
