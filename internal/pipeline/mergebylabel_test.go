package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

func feed(ctx context.Context, nodes ...hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
	ch := make(chan hxtypes.HierarchyNode)
	go func() {
		defer close(ch)
		for _, n := range nodes {
			select {
			case ch <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func collect(ch <-chan hxtypes.HierarchyNode) []hxtypes.HierarchyNode {
	var out []hxtypes.HierarchyNode
	for n := range ch {
		out = append(out, n)
	}
	return out
}

func instanceNode(label, mergeID, class, id string) hxtypes.HierarchyNode {
	n := hxtypes.HierarchyNode{
		Key:   hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: class, ID: id}),
		Label: label,
	}
	n.Processing.MergeByLabelID = mergeID
	return n
}

func TestMergeByLabel_CollapsesEqualLabelAndMergeID(t *testing.T) {
	ctx := context.Background()
	in := feed(ctx,
		instanceNode("Walls", "grp", "BisCore.Wall", "0x1"),
		instanceNode("Doors", "", "BisCore.Door", "0x2"),
		instanceNode("Walls", "grp", "BisCore.Wall", "0x3"),
	)

	out := collect(MergeByLabel()(ctx, in))
	require.Len(t, out, 2)
	require.Equal(t, "Walls", out[0].Label)
	require.Equal(t, 2, out[0].Key.InstanceKeys.Len())
	require.Equal(t, "Doors", out[1].Label)
}

func TestMergeByLabel_EmptyMergeIDNeverCollapses(t *testing.T) {
	ctx := context.Background()
	in := feed(ctx,
		instanceNode("Walls", "", "BisCore.Wall", "0x1"),
		instanceNode("Walls", "", "BisCore.Wall", "0x2"),
	)

	out := collect(MergeByLabel()(ctx, in))
	require.Len(t, out, 2)
}

func TestMergeByLabel_PreservesFirstSeenPosition(t *testing.T) {
	ctx := context.Background()
	in := feed(ctx,
		instanceNode("B", "grp", "X", "0x1"),
		instanceNode("A", "grp2", "X", "0x2"),
		instanceNode("B", "grp", "X", "0x3"),
	)

	out := collect(MergeByLabel()(ctx, in))
	require.Len(t, out, 2)
	require.Equal(t, "B", out[0].Label)
	require.Equal(t, "A", out[1].Label)
}
