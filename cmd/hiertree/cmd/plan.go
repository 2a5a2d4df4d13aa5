package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/render"
)

var planCmd = &cobra.Command{
	Use:   "plan <hierarchy-name>",
	Short: "Render a hierarchy definition's level tree",
	Long: `Plan loads the hierarchy-definitions document and prints the
named hierarchy's root-to-leaf level structure: predicate, generic/query
backing, and processing flags for each level.

Example:
  hiertree plan Catalog`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := hxconfig.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	doc, err := hxconfig.LoadDefinitions(resolveDefinitionsPath(cfg.Definitions.Path))
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}

	hd, err := doc.GetHierarchy(name)
	if err != nil {
		return err
	}

	render.Plan(cmd.OutOrStdout(), name, hd)
	return nil
}
