package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	schemaPath string
	logMode    string
)

func main() {
	root := &cobra.Command{
		Use:           "soulminer",
		Short:         "Mine game asset exports into tables",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "soulminer.yaml", "Project config file")
	root.PersistentFlags().StringVar(&schemaPath, "schema", "schema.yaml", "Extraction schema file")
	root.PersistentFlags().StringVar(&logMode, "log", "", "Log mode: dev, prod or quiet (overrides config)")
	root.AddCommand(mineCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(graphCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
