package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// Finalize emits each node as the public HierarchyNode value a provider
// returns (spec.md section 4.4 step 10). It is an identity pass: every
// earlier stage already produces fully-shaped hxtypes.HierarchyNode
// values, so finalize exists as its own named stage to keep the 10-stage
// contract explicit and as the single place a future wire-formatting
// concern (e.g. a public DTO conversion) would be inserted.
func Finalize() Stage {
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)
			for node := range in {
				if !emit(ctx, out, node) {
					return
				}
			}
		}()
		return out
	}
}
