package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the class hierarchy and mined output from the CLI",
	}
	cmd.AddCommand(queryDerivedCmd())
	cmd.AddCommand(queryIsaCmd())
	cmd.AddCommand(queryAncestorsCmd())
	cmd.AddCommand(queryResolveCmd())
	cmd.AddCommand(querySQLCmd())
	cmd.AddCommand(queryRunsCmd())
	cmd.AddCommand(queryCypherCmd())
	return cmd
}

func printJSON(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
