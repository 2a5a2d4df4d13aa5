package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxlog"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
	"github.com/dbsmedya/hierarchyengine/internal/provider"
	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
	"github.com/dbsmedya/hierarchyengine/internal/render"
)

var nodesParentID string

var nodesCmd = &cobra.Command{
	Use:   "nodes <hierarchy-name>",
	Short: "Stream getNodes for a hierarchy against the source database",
	Long: `Nodes connects to the configured source database and streams the
children of a parent node: the root level by default, or the children of
a named generic node when --parent-id is given.

Example:
  hiertree nodes Catalog
  hiertree nodes Catalog --parent-id categories`,
	Args: cobra.ExactArgs(1),
	RunE: runNodes,
}

func init() {
	nodesCmd.Flags().StringVar(&nodesParentID, "parent-id", "", "Generic node ID whose children to fetch (root if omitted)")
	rootCmd.AddCommand(nodesCmd)
}

func runNodes(cmd *cobra.Command, args []string) error {
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
	if nodesParentID != "" {
		n := hxtypes.HierarchyNode{Key: hxtypes.GenericKey(nodesParentID, "cli")}
		parent = &n
	}

	ch, err := p.GetNodes(ctx, provider.GetNodesOptions{ParentNode: parent})
	if err != nil {
		return fmt.Errorf("getNodes failed: %w", err)
	}

	var nodes []hxtypes.HierarchyNode
	for n := range ch {
		nodes = append(nodes, n)
	}

	render.Header(cmd.OutOrStdout(), "Nodes: %s", name)
	render.Tree(cmd.OutOrStdout(), nodes, 0)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d node(s)\n", len(nodes))
	return nil
}

// loadProviderInputs loads config and the named hierarchy definition and
// opens the source database connection, the trio every provider-backed
// subcommand needs before it can construct a provider.Provider.
func loadProviderInputs(ctx context.Context, hierarchyName string) (*hxconfig.Config, *hxconfig.HierarchyDefinition, *queryexec.MySQLExecutor, error) {
	cfg, err := hxconfig.Load(GetConfigFile())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.RowLimit)

	doc, err := hxconfig.LoadDefinitions(resolveDefinitionsPath(cfg.Definitions.Path))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	hd, err := doc.GetHierarchy(hierarchyName)
	if err != nil {
		return nil, nil, nil, err
	}

	exec, err := queryexec.NewMySQLExecutor(ctx, &cfg.Source)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to source database: %w", err)
	}

	return cfg, hd, exec, nil
}
