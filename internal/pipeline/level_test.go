package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

func TestRunLevel_ComposesStagesAndSortsFinalOutput(t *testing.T) {
	ctx := context.Background()

	b := labeled("Banana")
	b.Children = hxtypes.ChildrenYes
	a := labeled("Apple")
	a.Children = hxtypes.ChildrenYes
	hiddenNoChildren := labeled("DroppedForNoChildren")
	hiddenNoChildren.Processing.HideIfNoChildren = true
	hiddenNoChildren.Children = hxtypes.ChildrenNo

	source := feed(ctx, b, a, hiddenNoChildren)

	out := RunLevel(ctx, source, RunLevelOptions{})
	result := collect(out)

	require.Equal(t, []string{"Apple", "Banana"}, labels(result))
}

func TestRunLevel_PostHookCanDropNodes(t *testing.T) {
	ctx := context.Background()
	source := feed(ctx, labeled("keep"), labeled("drop"))

	out := RunLevel(ctx, source, RunLevelOptions{
		PostHook: func(node hxtypes.HierarchyNode) (hxtypes.HierarchyNode, bool) {
			return node, node.Label != "drop"
		},
	})
	result := collect(out)
	require.Equal(t, []string{"keep"}, labels(result))
}

type fakeGrouping struct {
	applied bool
}

func (g *fakeGrouping) Apply(ctx context.Context, parent *hxtypes.HierarchyNode, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
	g.applied = true
	return in
}

func TestRunLevel_InvokesGroupingStageWhenConfigured(t *testing.T) {
	ctx := context.Background()
	source := feed(ctx, labeled("a"))
	grouping := &fakeGrouping{}

	collect(RunLevel(ctx, source, RunLevelOptions{Grouping: grouping}))
	require.True(t, grouping.applied)
}
