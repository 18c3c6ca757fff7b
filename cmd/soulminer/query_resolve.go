package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"soulminer/internal/extract"
	"soulminer/internal/resolve"
)

type resolvedSlot struct {
	Slot  string `json:"slot"`
	Value string `json:"value"`
	From  string `json:"from"`
}

type resolvedClass struct {
	Class   string         `json:"class"`
	Values  []resolvedSlot `json:"values"`
	Missing []string       `json:"missing,omitempty"`
}

func queryResolveCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "resolve <class>",
		Short: "Resolve a class's attributes through its ancestors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(args[0], domain)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Resolve the slots of this schema domain (default: name, description, icon)")
	return cmd
}

func runResolve(name, domain string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	defer p.log.Sync()

	query := resolve.DisplayQuery()
	if domain != "" {
		d, ok := p.schema.DomainByName(domain)
		if !ok {
			return fmt.Errorf("unknown domain %q", domain)
		}
		query = extract.Query(d)
	}

	idx, src, err := p.index(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	class, ok := idx.Class(name)
	if !ok {
		return fmt.Errorf("class %q not found", name)
	}
	result, err := resolve.New(idx, p.log).Resolve(class, query)
	if err != nil {
		return err
	}

	out := resolvedClass{Class: class.Name, Values: []resolvedSlot{}, Missing: result.Missing()}
	for _, slot := range query.Slots {
		if value, ok := result.Value(slot.Name); ok {
			out.Values = append(out.Values, resolvedSlot{Slot: slot.Name, Value: value.Text, From: value.Class})
		}
	}
	return printJSON(out)
}
