// Package graph mirrors the class hierarchy into Neo4j as :Class nodes joined
// by INHERITS edges.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"soulminer/internal/config"
)

const userAgent = "soulminer"

var indexStatements = []string{
	`CREATE CONSTRAINT class_unique_name IF NOT EXISTS
FOR (c:Class) REQUIRE c.name_normalized IS UNIQUE`,
	`CREATE INDEX class_package IF NOT EXISTS FOR (c:Class) ON (c.package)`,
	`CREATE INDEX class_domains IF NOT EXISTS FOR (c:Class) ON (c.domains)`,
}

type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewClient(ctx context.Context, uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""),
		func(cfg *neo4jconfig.Config) {
			cfg.UserAgent = userAgent
		})
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}

	return &Client{driver: driver, database: database}, nil
}

// FromConfig connects with the project's neo4j settings.
func FromConfig(ctx context.Context, cfg config.Neo4jConfig) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j uri is not configured")
	}
	return NewClient(ctx, cfg.URI, cfg.Username, cfg.Password, cfg.Database)
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

func (c *Client) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   mode,
	})
}

// EnsureIndexes creates the class name constraint and lookup indexes. Each
// statement is idempotent.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range indexStatements {
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, stmt, nil)
			return nil, err
		}); err != nil {
			return fmt.Errorf("ensuring indexes: %w", err)
		}
	}

	return nil
}
