package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"soulminer/internal/extract"
	"soulminer/internal/graph"
	"soulminer/internal/mine"
)

func mineCmd() *cobra.Command {
	var domains []string
	var noDB, quiet, pushGraph bool
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Extract every schema domain from the asset exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(domains, noDB, quiet, pushGraph)
		},
	}
	cmd.Flags().StringArrayVar(&domains, "domain", nil, "Only mine this domain (repeatable)")
	cmd.Flags().BoolVar(&noDB, "no-db", false, "Skip the database and write CSV files only")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Hide the progress bar")
	cmd.Flags().BoolVar(&pushGraph, "graph", false, "Also push the class hierarchy to Neo4j")
	return cmd
}

func runMine(domains []string, noDB, quiet, pushGraph bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := loadProject()
	if err != nil {
		return err
	}
	defer p.log.Sync()

	src, err := p.source()
	if err != nil {
		return err
	}
	defer src.Close()

	var db mine.Store
	if !noDB && p.cfg.Output.DSN != "" {
		client, err := openStore(ctx, p.cfg)
		if err != nil {
			return err
		}
		defer client.Close(ctx)
		db = client
	}

	opts := mine.Options{
		Domains: domains,
		Workers: p.cfg.Workers,
		CSVDir:  p.cfg.Output.CSVDir,
	}
	if !quiet {
		opts.Progress = &barProgress{}
	}
	if pushGraph {
		client, err := graph.FromConfig(ctx, p.cfg.Neo4j)
		if err != nil {
			return err
		}
		defer client.Close(ctx)
		opts.Graph = client
	}

	result, err := mine.Run(ctx, p.cfg, p.schema, src, db, opts, p.log)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Mining complete.")
	fmt.Fprintf(os.Stdout, "  Run:      %s\n", result.RunID)
	fmt.Fprintf(os.Stdout, "  Classes:  %d\n", result.Classes)
	fmt.Fprintf(os.Stdout, "  Tables:   %d\n", result.Tables)
	fmt.Fprintf(os.Stdout, "  Rows:     %d\n", result.Rows)
	fmt.Fprintf(os.Stdout, "  Skipped:  %d\n", result.Skipped)
	for _, dr := range result.Domains {
		if dr.Err != nil {
			continue
		}
		fmt.Fprintf(os.Stdout, "  - %s: %d rows", dr.Table, dr.Stats.Rows)
		if dr.CSV != "" {
			fmt.Fprintf(os.Stdout, " (%s)", dr.CSV)
		}
		fmt.Fprintln(os.Stdout)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("mining completed with errors")
	}

	return nil
}

type barProgress struct {
	bar *progressbar.ProgressBar
}

func (b *barProgress) Start(total int) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Mining domains"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func (b *barProgress) Done(domain string, stats extract.Stats, err error) {
	if b.bar == nil {
		return
	}
	b.bar.Describe("Mining " + domain)
	_ = b.bar.Add(1)
}
