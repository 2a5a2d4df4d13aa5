package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// ChildFetcher resolves the children of one or more parent nodes,
// injected by the provider (internal/provider) which owns the recursive
// level-resolution loop this stage needs to call back into. Consecutive
// hidden siblings sharing the same instance class are batched into a
// single call (spec.md section 4.4 step 3, "to avoid re-issuing many
// small queries"). stopOnFirstChild constrains the fetch to "produce at
// most one node", the shape determine-children's probing needs.
type ChildFetcher func(ctx context.Context, parents []hxtypes.HierarchyNode, stopOnFirstChild bool) (<-chan hxtypes.HierarchyNode, error)

// HideInHierarchy replaces every node whose HideInHierarchy processing
// flag is set with its own children, fetched via fetcher. Consecutive
// hidden siblings with equal instance class are merged into one fetch
// call (spec.md section 4.4 step 3).
func HideInHierarchy(fetcher ChildFetcher) Stage {
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)

			var pending []hxtypes.HierarchyNode
			flush := func() bool {
				if len(pending) == 0 {
					return true
				}
				group := pending
				pending = nil
				children, err := fetcher(ctx, group, false)
				if err != nil {
					// A hidden node whose own children query fails
					// degrades to emitting nothing for that group
					// rather than aborting the whole level; the error
					// taxonomy (spec.md section 4.9) scopes failures to
					// the offending level, and this group IS that level.
					return true
				}
				for child := range children {
					// The child takes the hidden node's place, so it
					// also takes the hidden node's parent chain.
					child.ParentKeys = group[0].ParentKeys
					if !emit(ctx, out, child) {
						return false
					}
				}
				return true
			}

			for node := range in {
				if IsInfoNode(node) || !node.Processing.HideInHierarchy {
					if !flush() {
						return
					}
					if !emit(ctx, out, node) {
						return
					}
					continue
				}

				if len(pending) > 0 && !sameHiddenGroup(pending[0], node) {
					if !flush() {
						return
					}
				}
				pending = append(pending, node)
			}
			flush()
		}()
		return out
	}
}

// sameHiddenGroup reports whether a and b are consecutive hidden
// siblings eligible to share one children fetch: both instance nodes of
// the same class.
func sameHiddenGroup(a, b hxtypes.HierarchyNode) bool {
	if !a.IsInstanceNode() || !b.IsInstanceNode() {
		return false
	}
	aClasses := a.Key.InstanceKeys.Slice()
	bClasses := b.Key.InstanceKeys.Slice()
	if len(aClasses) == 0 || len(bClasses) == 0 {
		return false
	}
	return aClasses[0].ClassName == bClasses[0].ClassName
}
