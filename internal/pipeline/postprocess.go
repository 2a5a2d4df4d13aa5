package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// AutoExpandResolver sets a grouping node's AutoExpand flag according to
// the filtering overlay's rule (spec.md section 4.6), injected by
// internal/filtering so this stage stays free of a direct import-cycle
// risk on that package.
type AutoExpandResolver func(node hxtypes.HierarchyNode) bool

// PostProcess applies the optional per-definition postProcessNode hook
// and, for grouping nodes, sets AutoExpand via resolver (spec.md section
// 4.4 step 8). A hook returning ok=false drops the node.
func PostProcess(hook ProcessHook, resolver AutoExpandResolver, yielder Yielder) Stage {
	if yielder == nil {
		yielder = noopYielder{}
	}
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)
			count := 0
			for node := range in {
				if !IsInfoNode(node) && node.Key.IsGroupingKey() && resolver != nil {
					expand := resolver(node)
					node.AutoExpand = &expand
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
