package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// DetermineChildren resolves ChildrenUnknown nodes by issuing a probing
// request via fetcher constrained to "produce at most one node"
// (stopOnFirstChild = true), setting Children accordingly (spec.md
// section 4.4 step 5). Nodes with already-known Children pass through
// untouched.
func DetermineChildren(fetcher ChildFetcher) Stage {
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)
			for node := range in {
				if IsInfoNode(node) || node.Children != hxtypes.ChildrenUnknown {
					if !emit(ctx, out, node) {
						return
					}
					continue
				}

				has, err := probeHasChildren(ctx, fetcher, node)
				if err != nil {
					// A probe failure marks the node as having
					// children rather than failing the whole level,
					// so downstream hide-if-no-children never
					// silently drops a node whose child count merely
					// failed to resolve.
					node.Children = hxtypes.ChildrenYes
					if !emit(ctx, out, node) {
						return
					}
					continue
				}
				if has {
					node.Children = hxtypes.ChildrenYes
				} else {
					node.Children = hxtypes.ChildrenNo
				}
				if !emit(ctx, out, node) {
					return
				}
			}
		}()
		return out
	}
}

func probeHasChildren(ctx context.Context, fetcher ChildFetcher, node hxtypes.HierarchyNode) (bool, error) {
	children, err := fetcher(ctx, []hxtypes.HierarchyNode{node}, true)
	if err != nil {
		return false, err
	}
	for range children {
		return true, nil
	}
	return false, nil
}
