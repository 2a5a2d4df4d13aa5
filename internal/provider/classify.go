package provider

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/filtering"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/pipeline"
)

// prepareLevel runs between a level's raw parsed sources and
// pipeline.RunLevel: it stamps every node's full ParentKeys chain via
// hxtypes.HierarchyNode.WithParentKeys (ParseSource's own parentKey
// argument only appends one hop to whatever ParentKeys a fresh node
// already has, which is none — the full chain always comes from
// WithParentKeys instead), and computes each node's REAL filtering
// classification via overlay.Classify.
//
// The SELECT built by internal/querybuilder bakes SupportsFiltering as
// a query-level constant (filtering.Active), not a genuine per-row
// target flag — section 4.6's actual per-node matching can only run
// here, against the identifiers the query actually returned, which is
// why this step exists as a dedicated stage ahead of
// pipeline.PreProcess rather than as a ParseHook.
func (p *Provider) prepareLevel(
	ctx context.Context,
	overlay *filtering.Overlay,
	state filtering.MatchState,
	parent *hxtypes.HierarchyNode,
	in <-chan hxtypes.HierarchyNode,
) <-chan hxtypes.HierarchyNode {
	out := make(chan hxtypes.HierarchyNode)
	go func() {
		defer close(out)
		for node := range in {
			node = node.WithParentKeys(parent)

			if !pipeline.IsInfoNode(node) {
				cls, matched := overlay.Classify(ctx, state, identifierFor(node))
				if !matched {
					continue
				}
				node.Filtering.IsFilterTarget = cls.IsFilterTarget
				node.Filtering.HasFilterTargetAncestor = cls.HasFilterTargetAncestor
				node.Filtering.FilteredChildrenIdentifierPaths = cls.Next.ChildPaths()
				node.Filtering.FilterTargetOptions = pathOptionsToMap(cls.TargetOptions)
			}

			select {
			case out <- node:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// identifierFor builds the HierarchyNodeIdentifier overlay.Classify
// matches a node's key against. A node backed by multiple instance keys
// (e.g. a merged-by-label node) is classified against its first key:
// path matching is about which branch a node belongs to, and a merged
// node's keys all share that branch by construction.
func identifierFor(node hxtypes.HierarchyNode) hxtypes.HierarchyNodeIdentifier {
	if node.IsGeneric() {
		return hxtypes.GenericIdentifier(node.Key.ID, node.Key.Source)
	}
	keys := node.Key.InstanceKeys.Slice()
	if len(keys) == 0 {
		return hxtypes.HierarchyNodeIdentifier{}
	}
	return hxtypes.InstanceIdentifier(keys[0].ClassName, keys[0].ID, keys[0].IModelKey)
}

// pathOptionsToMap renders a matched path's PathOptions into the
// provider-neutral map[string]any shape FilteringProps.FilterTargetOptions
// carries on the wire (spec.md section 3).
func pathOptionsToMap(opts hxtypes.PathOptions) map[string]any {
	if !opts.AutoExpand && opts.Reveal == nil {
		return nil
	}
	out := map[string]any{}
	if opts.AutoExpand {
		out["autoExpand"] = true
	}
	if opts.Reveal != nil {
		reveal := map[string]any{}
		if opts.Reveal.Depth != nil {
			reveal["depth"] = *opts.Reveal.Depth
		}
		if opts.Reveal.DepthInPath != nil {
			reveal["depthInPath"] = *opts.Reveal.DepthInPath
		}
		out["reveal"] = reveal
	}
	return out
}

// postHook implements spec.md section 4.6's "grouping nodes inherit the
// flag": a grouping node produced at this level has no identifier of
// its own to classify, so it simply inherits the level's own
// hasFilterTargetAncestor state instead of the per-row value computed
// in prepareLevel.
func (p *Provider) postHook(state filtering.MatchState) pipeline.ProcessHook {
	return func(node hxtypes.HierarchyNode) (hxtypes.HierarchyNode, bool) {
		if node.Key.IsGroupingKey() {
			node.Filtering.HasFilterTargetAncestor = state.HasFilterTargetAncestor()
		}
		return node, true
	}
}
