package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// ProcessHook is the optional per-definition preProcessNode/postProcessNode
// hook: it may return ok=false to drop the node (spec.md section 4.1,
// "Pre/post-processors returning undefined silently drop the node").
type ProcessHook func(node hxtypes.HierarchyNode) (hxtypes.HierarchyNode, bool)

// PreProcess applies hook to every node (if set) and drops a filter-target
// node that has hideInHierarchy and no filter-target ancestor — such a
// node only re-surfaces beneath another target (spec.md section 4.4 step
// 2).
func PreProcess(hook ProcessHook, yielder Yielder) Stage {
	if yielder == nil {
		yielder = noopYielder{}
	}
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)
			count := 0
			for node := range in {
				if IsInfoNode(node) {
					if !emit(ctx, out, node) {
						return
					}
					continue
				}

				if node.Processing.HideInHierarchy && node.Filtering.IsFilterTarget && !node.Filtering.HasFilterTargetAncestor {
					continue
				}

				if hook != nil {
					var ok bool
					node, ok = hook(node)
					if !ok {
						continue
					}
				}

				if !emit(ctx, out, node) {
					return
				}
				count++
				if count%100 == 0 {
					yielder.Yield(ctx)
				}
			}
		}()
		return out
	}
}

func emit(ctx context.Context, out chan<- hxtypes.HierarchyNode, node hxtypes.HierarchyNode) bool {
	select {
	case out <- node:
		return true
	case <-ctx.Done():
		return false
	}
}
