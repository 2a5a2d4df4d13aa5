package provider

import (
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/querybuilder"
)

// GetNodesOptions is the input to Provider.GetNodes (spec.md section
// 4.8). ParentNode nil requests the root level.
type GetNodesOptions struct {
	ParentNode *hxtypes.HierarchyNode

	// InstanceFilter narrows instance-query definitions (spec.md section
	// 4.2). Nil means unfiltered.
	InstanceFilter *querybuilder.GenericInstanceFilter

	// HierarchyLevelSizeLimit overrides Options.DefaultRowLimit for this
	// call. Zero means "use the provider default"; a negative value
	// means explicitly unbounded.
	HierarchyLevelSizeLimit int

	// IgnoreCache bypasses the cache read but still writes the result
	// back (spec.md section 4.7).
	IgnoreCache bool
}

// GetNodeInstanceKeysOptions is the input to
// Provider.GetNodeInstanceKeys.
type GetNodeInstanceKeysOptions struct {
	ParentNode     *hxtypes.HierarchyNode
	InstanceFilter *querybuilder.GenericInstanceFilter
}
