package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soulminer/internal/graph"
	"soulminer/internal/mine"
)

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage the Neo4j mirror of the class hierarchy",
	}
	cmd.AddCommand(graphPushCmd())
	cmd.AddCommand(graphDescendantsCmd())
	return cmd
}

func graphPushCmd() *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push the class hierarchy to Neo4j",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			client, err := graph.FromConfig(ctx, p.cfg.Neo4j)
			if err != nil {
				return err
			}
			defer client.Close(ctx)

			if err := mine.PushHierarchy(ctx, client, idx, p.schema, batchSize, p.log); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Pushed %d classes.\n", idx.Len())
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", graph.DefaultBatchSize, "Classes per write transaction")
	return cmd
}

func graphDescendantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descendants <base>",
		Short: "List classes below a base class as stored in Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := loadProject()
			if err != nil {
				return err
			}
			defer p.log.Sync()

			client, err := graph.FromConfig(ctx, p.cfg.Neo4j)
			if err != nil {
				return err
			}
			defer client.Close(ctx)

			names, err := client.Descendants(ctx, args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(os.Stdout, name)
			}
			return nil
		},
	}
}
