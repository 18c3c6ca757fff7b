package main

import (
	"context"

	"github.com/spf13/cobra"

	"soulminer/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	defer p.log.Sync()

	idx, src, err := p.index(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	server := mcp.NewServer(p.schema, idx, version, p.log)
	return server.Run(ctx, &sdk.StdioTransport{})
}
