package filtering

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// AutoExpandForGroup implements the pipeline.AutoExpandResolver shape
// (func(hxtypes.HierarchyNode) bool) structurally, the same dependency
// inversion already used for internal/grouping.Stage against
// internal/pipeline.GroupingStage: internal/pipeline never imports this
// package, but a *Overlay value satisfies its resolver function type by
// method value.
//
// A grouping node auto-expands when any of its grouped instance keys
// matches a configured path's final identifier whose PathOptions carry
// AutoExpand (spec.md section 4.6's auto-expand policy, generalized from
// single nodes to grouping nodes: the group stands in for all of its
// members).
func (o *Overlay) AutoExpandForGroup(node hxtypes.HierarchyNode) bool {
	if !o.Configured() {
		return false
	}
	ctx := context.Background()
	for _, key := range node.GroupedInstanceKeys.Slice() {
		identifier := hxtypes.InstanceIdentifier(key.ClassName, key.ID, key.IModelKey)
		for _, p := range o.paths {
			if !p.Options.AutoExpand {
				continue
			}
			if len(p.Path) == 0 {
				continue
			}
			last := p.Path[len(p.Path)-1]
			if o.stepMatches(ctx, last, identifier) {
				return true
			}
		}
	}
	return false
}

// RevealDepth resolves spec.md section 4.6's reveal-by-depth rule for a
// node reached after matchedDepth identifier-path steps (its position
// along the matched path) at tree depth treeDepth (its distance from the
// root), returning whether options' Reveal setting selects this node.
func RevealDepth(options hxtypes.PathOptions, treeDepth, matchedDepth int) bool {
	r := options.Reveal
	if r == nil {
		return false
	}
	if r.Depth != nil && *r.Depth == treeDepth {
		return true
	}
	if r.DepthInPath != nil && *r.DepthInPath == matchedDepth {
		return true
	}
	return false
}
