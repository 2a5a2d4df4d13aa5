package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

func TestDetermineChildren_ProbesUnknownAndSetsYes(t *testing.T) {
	ctx := context.Background()
	fetcher := func(ctx context.Context, parents []hxtypes.HierarchyNode, stopOnFirstChild bool) (<-chan hxtypes.HierarchyNode, error) {
		require.True(t, stopOnFirstChild)
		return feed(ctx, hxtypes.HierarchyNode{Label: "one-child"}), nil
	}

	in := feed(ctx, hxtypes.HierarchyNode{Label: "parent", Children: hxtypes.ChildrenUnknown})
	out := collect(DetermineChildren(fetcher)(ctx, in))
	require.Len(t, out, 1)
	require.Equal(t, hxtypes.ChildrenYes, out[0].Children)
}

func TestDetermineChildren_ProbeEmptySetsNo(t *testing.T) {
	ctx := context.Background()
	fetcher := func(ctx context.Context, parents []hxtypes.HierarchyNode, stopOnFirstChild bool) (<-chan hxtypes.HierarchyNode, error) {
		return feed(ctx), nil
	}

	in := feed(ctx, hxtypes.HierarchyNode{Label: "parent", Children: hxtypes.ChildrenUnknown})
	out := collect(DetermineChildren(fetcher)(ctx, in))
	require.Len(t, out, 1)
	require.Equal(t, hxtypes.ChildrenNo, out[0].Children)
}

func TestDetermineChildren_KnownChildrenPassThrough(t *testing.T) {
	ctx := context.Background()
	fetcher := func(ctx context.Context, parents []hxtypes.HierarchyNode, stopOnFirstChild bool) (<-chan hxtypes.HierarchyNode, error) {
		t.Fatal("fetcher should not be called for a node with known Children")
		return nil, nil
	}

	in := feed(ctx, hxtypes.HierarchyNode{Label: "parent", Children: hxtypes.ChildrenYes})
	out := collect(DetermineChildren(fetcher)(ctx, in))
	require.Len(t, out, 1)
	require.Equal(t, hxtypes.ChildrenYes, out[0].Children)
}

func TestDetermineChildren_ProbeErrorDefaultsToYesRatherThanDroppingNode(t *testing.T) {
	ctx := context.Background()
	fetcher := func(ctx context.Context, parents []hxtypes.HierarchyNode, stopOnFirstChild bool) (<-chan hxtypes.HierarchyNode, error) {
		return nil, errors.New("boom")
	}

	in := feed(ctx, hxtypes.HierarchyNode{Label: "parent", Children: hxtypes.ChildrenUnknown})
	out := collect(DetermineChildren(fetcher)(ctx, in))
	require.Len(t, out, 1)
	require.Equal(t, hxtypes.ChildrenYes, out[0].Children)
}
