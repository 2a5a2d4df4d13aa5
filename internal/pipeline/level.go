package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// GroupingStage applies the grouping pipeline (internal/grouping, spec.md
// section 4.5) to a level's instance nodes, given the parent the level
// was requested for (needed to skip grouping levels already applied
// above the parent). Declared here rather than imported concretely so
// internal/pipeline and internal/grouping can be built, tested, and read
// independently; internal/provider wires the real implementation in.
type GroupingStage interface {
	Apply(ctx context.Context, parent *hxtypes.HierarchyNode, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode
}

// RunLevelOptions configures one hierarchy level's streaming pipeline
// run (spec.md section 4.4). Every field is optional; a nil hook/stage
// is treated as a no-op passthrough.
type RunLevelOptions struct {
	Parent       *hxtypes.HierarchyNode
	PreHook      ProcessHook
	PostHook     ProcessHook
	ChildFetcher ChildFetcher
	Grouping     GroupingStage
	AutoExpand   AutoExpandResolver
	Yielder      Yielder
}

// RunLevel composes the fixed 10-stage pipeline (spec.md section 4.4)
// over source, which is expected to already carry parsed instance/
// generic/info nodes (internal/provider builds source by fanning
// ParseSource out across a level's matched definitions and merging
// their outputs, preserving definition-declaration order).
//
// Stage 1 (parse) and its RowsLimitExceededError/UnknownSchemaOrClassError
// handling live in ParseSource and the provider's per-definition query
// construction, not here: by the time a node reaches RunLevel it is
// already either a real node or one of the synthetic info nodes those
// layers emit in place of a fatal error.
func RunLevel(ctx context.Context, source <-chan hxtypes.HierarchyNode, opts RunLevelOptions) <-chan hxtypes.HierarchyNode {
	stream := source

	stream = PreProcess(opts.PreHook, opts.Yielder)(ctx, stream)

	if opts.ChildFetcher != nil {
		stream = HideInHierarchy(opts.ChildFetcher)(ctx, stream)
	}

	stream = MergeByLabel()(ctx, stream)

	if opts.ChildFetcher != nil {
		stream = DetermineChildren(opts.ChildFetcher)(ctx, stream)
	}

	stream = HideIfNoChildren()(ctx, stream)

	if opts.Grouping != nil {
		stream = opts.Grouping.Apply(ctx, opts.Parent, stream)
	}

	stream = PostProcess(opts.PostHook, opts.AutoExpand, opts.Yielder)(ctx, stream)
	stream = Sort()(ctx, stream)
	stream = Finalize()(ctx, stream)

	return stream
}
