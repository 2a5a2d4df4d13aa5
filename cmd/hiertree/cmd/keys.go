package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/hierarchyengine/internal/hxlog"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
	"github.com/dbsmedya/hierarchyengine/internal/provider"
)

var keysParentID string

var keysCmd = &cobra.Command{
	Use:   "keys <hierarchy-name>",
	Short: "Stream getNodeInstanceKeys for a hierarchy against the source database",
	Long: `Keys connects to the configured source database and streams the
flattened instance keys under a parent node: the root level by default,
or a named generic node's children when --parent-id is given.

Example:
  hiertree keys Catalog --parent-id categories`,
	Args: cobra.ExactArgs(1),
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().StringVar(&keysParentID, "parent-id", "", "Generic node ID whose instance keys to fetch (root if omitted)")
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := context.Background()

	cfg, hd, exec, err := loadProviderInputs(ctx, name)
	if err != nil {
		return err
	}
	defer exec.Close()

	logger, err := hxlog.New(&hxlog.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	inspector := metadata.NewSQLInspector(exec.DB())

	p, err := provider.New(provider.Options{
		Executor:        exec,
		Inspector:       inspector,
		Hierarchy:       hd,
		Logger:          logger,
		DefaultRowLimit: cfg.QueryLimits.DefaultRowLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to construct provider: %w", err)
	}
	defer p.Dispose()

	var parent *hxtypes.HierarchyNode
	if keysParentID != "" {
		n := hxtypes.HierarchyNode{Key: hxtypes.GenericKey(keysParentID, "cli")}
		parent = &n
	}

	ch, err := p.GetNodeInstanceKeys(ctx, provider.GetNodeInstanceKeysOptions{ParentNode: parent})
	if err != nil {
		return fmt.Errorf("getNodeInstanceKeys failed: %w", err)
	}

	count := 0
	for k := range ch {
		fmt.Fprintln(cmd.OutOrStdout(), k.String())
		count++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d instance key(s)\n", count)
	return nil
}
