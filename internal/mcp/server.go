// Package mcp serves read-only hierarchy and attribute queries over the Model
// Context Protocol.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"soulminer/internal/config"
	"soulminer/internal/hierarchy"
	"soulminer/internal/logger"
	"soulminer/internal/resolve"
)

const instructions = `Tools answer questions about the game's class hierarchy as exported from
its asset files. Class names are matched case-insensitively. Use get_schema to
see the mined domains, derived_classes to list the members of a base class and
resolve_class to read a class's attributes with inherited defaults filled in.`

type Server struct {
	schema   *config.Schema
	index    *hierarchy.Index
	resolver *resolve.Resolver
	log      *logger.Logger
	mcp      *sdk.Server
}

// NewServer registers every tool over a built index. The index is never
// modified, so tool calls may run concurrently.
func NewServer(schema *config.Schema, index *hierarchy.Index, version string, log *logger.Logger) *Server {
	log = logger.OrNop(log)
	s := &Server{
		schema:   schema,
		index:    index,
		resolver: resolve.New(index, log),
		log:      log,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "soulminer",
			Version: version,
		}, &sdk.ServerOptions{Instructions: instructions}),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.log.Info("mcp server starting", "classes", s.index.Len(), "domains", len(s.schema.Domains))
	err := s.mcp.Run(ctx, transport)
	s.log.Info("mcp server stopped")
	return err
}
