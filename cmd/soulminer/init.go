package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const defaultSchema = `version: 1

# Engine classes that never appear in the export corpus.
natives:
  - { name: Object }
  - { name: Actor, super: Object }

domains:
  - name: weapons
    base_classes: [BP_WeaponBase_C]
    exclude_abstract: true
    slots:
      - { name: Name, property: Name, required: true }
      - { name: Description, property: Description }
      - { name: Icon, property: Icon, kind: image }

  - name: armor
    base_classes: [BP_ArmorBase_C]
    exclude_abstract: true
    slots:
      - { name: Name, property: Name, required: true }
      - { name: Description, property: Description }
      - { name: Icon, property: Icon, kind: image }
      - { name: Gender, property: Gender, kind: property, required: true }
    combine:
      key: name
      variant: gender
      variants: [Male, Female]
      merge_description: true
`

func initCmd() *cobra.Command {
	var projectName string
	var exportDir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new soulminer project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, exportDir)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&exportDir, "exports", "./Exports", "Directory holding the JSON asset exports")
	return cmd
}

func runInit(projectName, exportDir string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if _, err := os.Stat(schemaPath); err == nil {
		return fmt.Errorf("%s already exists", schemaPath)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\nassets:\n  paths:\n    - %s\n  exclude:\n    - \"**/Audio/**\"\n\noutput:\n  dsn: sqlite://./out/mined.db\n  csv_dir: ./out/csv\n\nneo4j:\n  uri: \"\"\n  username: neo4j\n  password: changeme\n  database: neo4j\n\nlog:\n  mode: dev\n\nworkers: 4\n", projectName, exportDir)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	if err := os.WriteFile(schemaPath, []byte(defaultSchema), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", schemaPath, err)
	}

	return nil
}
