package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soulminer/internal/extract"
)

func queryDerivedCmd() *cobra.Command {
	var excludeAbstract bool
	cmd := &cobra.Command{
		Use:   "derived <base>",
		Short: "List every class derived from a base class",
		Args:  cobra.ExactArgs(1),
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

			if _, ok := idx.Class(args[0]); !ok {
				return fmt.Errorf("class %q not found", args[0])
			}
			for _, class := range idx.DerivedClasses(args[0]) {
				if excludeAbstract && extract.IsAbstract(class) {
					continue
				}
				fmt.Fprintln(os.Stdout, class.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&excludeAbstract, "exclude-abstract", false, "Skip abstract and *_Base classes")
	return cmd
}

func queryIsaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "isa <class> <ancestor>",
		Short: "Check whether a class derives from an ancestor",
		Args:  cobra.ExactArgs(2),
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

			fmt.Fprintln(os.Stdout, idx.IsDerivedFrom(args[0], args[1]))
			return nil
		},
	}
}

func queryAncestorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ancestors <class>",
		Short: "Print a class and its ancestors up to the root",
		Args:  cobra.ExactArgs(1),
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

			chain, err := idx.Ancestors(args[0])
			if err != nil {
				return err
			}
			if len(chain) == 0 {
				return fmt.Errorf("class %q not found", args[0])
			}
			for _, class := range chain {
				fmt.Fprintf(os.Stdout, "%s\t%s\n", class.Name, class.Package)
			}
			return nil
		},
	}
}
