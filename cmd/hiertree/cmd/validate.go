package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and hierarchy definitions",
	Long: `Validate checks the engine configuration file and the hierarchy
definitions document it points at, then pings the source database.

Checks performed:
  - Configuration syntax and required fields
  - Hierarchy-definitions structural consistency
  - Source database connectivity

Example:
  hiertree validate --config hiertree.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := hxconfig.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.RowLimit)

	fmt.Printf("\n=== Configuration Validation ===\n")
	fmt.Printf("Config file: %s\n", configFile)

	hasErrors := false
	if err := cfg.Validate(); err != nil {
		fmt.Printf("config: FAIL\n  %v\n", err)
		hasErrors = true
	} else {
		fmt.Printf("config: OK\n")
	}

	defsPath := resolveDefinitionsPath(cfg.Definitions.Path)
	doc, err := hxconfig.LoadDefinitions(defsPath)
	if err != nil {
		fmt.Printf("definitions (%s): FAIL\n  %v\n", defsPath, err)
		hasErrors = true
	} else if err := doc.Validate(); err != nil {
		fmt.Printf("definitions (%s): FAIL\n  %v\n", defsPath, err)
		hasErrors = true
	} else {
		fmt.Printf("definitions (%s): OK\n", defsPath)
		fmt.Printf("hierarchies found: %d\n", len(doc.Hierarchies))
	}

	ctx := context.Background()
	exec, err := queryexec.NewMySQLExecutor(ctx, &cfg.Source)
	if err != nil {
		fmt.Printf("source connection: FAIL\n  %v\n", err)
		hasErrors = true
	} else {
		defer exec.Close()
		if err := exec.Ping(ctx); err != nil {
			fmt.Printf("source connection: FAIL\n  %v\n", err)
			hasErrors = true
		} else {
			fmt.Printf("source connection: OK\n")
		}
	}

	fmt.Println()
	if hasErrors {
		return fmt.Errorf("validation failed")
	}
	fmt.Println("All checks passed.")
	return nil
}
