package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// HideIfNoChildren drops nodes whose HideIfNoChildren processing flag
// is set and whose resolved Children is ChildrenNo (spec.md section 4.4
// step 6).
func HideIfNoChildren() Stage {
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)
			for node := range in {
				if !IsInfoNode(node) && node.Processing.HideIfNoChildren && node.Children == hxtypes.ChildrenNo {
					continue
				}
				if !emit(ctx, out, node) {
					return
				}
			}
		}()
		return out
	}
}
