package pipeline

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// Stage transforms a stream of nodes into another stream of nodes. Each
// of the fixed 10 stages in spec.md section 4.4 is a Stage; they
// compose by feeding one's output channel as the next's input.
type Stage func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode

// Yielder is implemented by internal/backpressure.Yielder: a stage that
// processes many items calls Yield every 100 items (spec.md section 5,
// "main-thread yielding").
type Yielder interface {
	Yield(ctx context.Context)
}

// noopYielder is used where no Yielder is configured, keeping Stage
// constructors usable standalone in tests.
type noopYielder struct{}

func (noopYielder) Yield(context.Context) {}

// Compose chains stages left to right: Compose(a, b, c)(ctx, in) runs
// in through a, then b, then c.
func Compose(stages ...Stage) Stage {
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := in
		for _, s := range stages {
			out = s(ctx, out)
		}
		return out
	}
}

// drain reads and discards every remaining node from ch. No stage calls
// it: a consumer that abandons a channel mid-stream relies on the
// producer selecting on ctx.Done() instead. RunLevel never cancels ctx
// itself; that is left to its caller.
func drain(ch <-chan hxtypes.HierarchyNode) {
	for range ch {
	}
}
