package filtering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

func TestOverlay_Unconfigured_PassesEverythingThrough(t *testing.T) {
	o := New(nil, nil)
	require.False(t, o.Configured())

	state := o.RootState()
	require.False(t, state.Active())

	cls, matched := o.Classify(context.Background(), state, hxtypes.InstanceIdentifier("Schema.A", "0x1", ""))
	require.True(t, matched)
	require.False(t, cls.IsFilterTarget)
}

func TestOverlay_PathMatching_NarrowsToTargetBranch(t *testing.T) {
	path := hxtypes.IdentifierPath{
		Path: []hxtypes.HierarchyNodeIdentifier{
			hxtypes.InstanceIdentifier("Schema.A", "0x1", ""),
			hxtypes.InstanceIdentifier("Schema.B", "0x2", ""),
		},
	}
	o := New([]hxtypes.IdentifierPath{path}, metadata.NewStaticInspector(nil, nil))
	root := o.RootState()

	// Root level produces two candidate rows, 0x1 (on-path) and 0x3 (not).
	clsMatch, matched := o.Classify(context.Background(), root, hxtypes.InstanceIdentifier("Schema.A", "0x1", ""))
	require.True(t, matched)
	require.False(t, clsMatch.IsFilterTarget)

	_, matched = o.Classify(context.Background(), root, hxtypes.InstanceIdentifier("Schema.A", "0x3", ""))
	require.False(t, matched)

	// Under 0x1's state, only 0x2 continues the path and is the target.
	clsTarget, matched := o.Classify(context.Background(), clsMatch.Next, hxtypes.InstanceIdentifier("Schema.B", "0x2", ""))
	require.True(t, matched)
	require.True(t, clsTarget.IsFilterTarget)

	_, matched = o.Classify(context.Background(), clsMatch.Next, hxtypes.InstanceIdentifier("Schema.B", "0x9", ""))
	require.False(t, matched)
}

func TestOverlay_HasFilterTargetAncestor_StopsFurtherNarrowing(t *testing.T) {
	path := hxtypes.IdentifierPath{
		Path: []hxtypes.HierarchyNodeIdentifier{
			hxtypes.InstanceIdentifier("Schema.A", "0x1", ""),
		},
	}
	o := New([]hxtypes.IdentifierPath{path}, nil)
	root := o.RootState()

	cls, matched := o.Classify(context.Background(), root, hxtypes.InstanceIdentifier("Schema.A", "0x1", ""))
	require.True(t, matched)
	require.True(t, cls.IsFilterTarget)
	require.True(t, cls.Next.HasFilterTargetAncestor())

	// Any descendant identifier now passes through unconditionally.
	anyChild, matched := o.Classify(context.Background(), cls.Next, hxtypes.InstanceIdentifier("Schema.Z", "0xdead", ""))
	require.True(t, matched)
	require.False(t, anyChild.IsFilterTarget)
	require.True(t, anyChild.HasFilterTargetAncestor)
}

func TestOverlay_ClassDerivation_MatchesViaInspector(t *testing.T) {
	inspector := metadata.NewStaticInspector([]metadata.ClassInfo{
		{FullClassName: "BisCore.Element"},
		{FullClassName: "BisCore.PhysicalElement", BaseClasses: []string{"BisCore.Element"}},
	}, nil)
	path := hxtypes.IdentifierPath{
		Path: []hxtypes.HierarchyNodeIdentifier{
			hxtypes.InstanceIdentifier("BisCore.Element", "0x1", ""),
		},
	}
	o := New([]hxtypes.IdentifierPath{path}, inspector)
	root := o.RootState()

	cls, matched := o.Classify(context.Background(), root, hxtypes.InstanceIdentifier("BisCore.PhysicalElement", "0x1", ""))
	require.True(t, matched)
	require.True(t, cls.IsFilterTarget)
}

func TestOverlay_TargetInstanceIDs_NarrowsQuery(t *testing.T) {
	o := New([]hxtypes.IdentifierPath{
		{Path: []hxtypes.HierarchyNodeIdentifier{hxtypes.InstanceIdentifier("Schema.A", "0x1", "")}},
		{Path: []hxtypes.HierarchyNodeIdentifier{hxtypes.InstanceIdentifier("Schema.A", "0x2", "")}},
	}, nil)
	ids, restrict := o.TargetInstanceIDs(o.RootState())
	require.True(t, restrict)
	require.ElementsMatch(t, []string{"0x1", "0x2"}, ids)
}

func TestOverlay_AllowedGenericNodeIDs_NarrowsGenericDefinitions(t *testing.T) {
	o := New([]hxtypes.IdentifierPath{
		{Path: []hxtypes.HierarchyNodeIdentifier{hxtypes.GenericIdentifier("root-node", "")}},
	}, nil)
	ids, restrict := o.AllowedGenericNodeIDs(o.RootState())
	require.True(t, restrict)
	require.True(t, ids["root-node"])
	require.False(t, ids["other-node"])
}

func TestOverlay_AutoExpandForGroup_MatchesOptedInPath(t *testing.T) {
	o := New([]hxtypes.IdentifierPath{
		{
			Path:    []hxtypes.HierarchyNodeIdentifier{hxtypes.InstanceIdentifier("Schema.A", "0x1", "")},
			Options: hxtypes.PathOptions{AutoExpand: true},
		},
	}, nil)

	group := hxtypes.HierarchyNode{}
	group.GroupedInstanceKeys.AddAll([]hxtypes.InstanceKey{{ClassName: "Schema.A", ID: "0x1"}})
	require.True(t, o.AutoExpandForGroup(group))

	other := hxtypes.HierarchyNode{}
	other.GroupedInstanceKeys.AddAll([]hxtypes.InstanceKey{{ClassName: "Schema.A", ID: "0x9"}})
	require.False(t, o.AutoExpandForGroup(other))
}

func TestOverlay_ChildPaths_RoundTripsThroughStateFromChildPaths(t *testing.T) {
	path := hxtypes.IdentifierPath{
		Path: []hxtypes.HierarchyNodeIdentifier{
			hxtypes.InstanceIdentifier("Schema.A", "0x1", ""),
			hxtypes.InstanceIdentifier("Schema.B", "0x2", ""),
		},
	}
	o := New([]hxtypes.IdentifierPath{path}, nil)
	root := o.RootState()

	cls, matched := o.Classify(context.Background(), root, hxtypes.InstanceIdentifier("Schema.A", "0x1", ""))
	require.True(t, matched)

	// Simulate storing cls.Next on the produced node and later rebuilding
	// a fresh MatchState from that stored field alone (as Provider would
	// when resolving the node's children in a later call).
	stored := cls.Next.ChildPaths()
	rebuilt := StateFromChildPaths(stored, cls.Next.HasFilterTargetAncestor())

	target, matched := o.Classify(context.Background(), rebuilt, hxtypes.InstanceIdentifier("Schema.B", "0x2", ""))
	require.True(t, matched)
	require.True(t, target.IsFilterTarget)
}

func TestRevealDepth(t *testing.T) {
	depth := 2
	opts := hxtypes.PathOptions{Reveal: &hxtypes.RevealOption{Depth: &depth}}
	require.True(t, RevealDepth(opts, 2, 0))
	require.False(t, RevealDepth(opts, 1, 0))

	inPath := 1
	opts2 := hxtypes.PathOptions{Reveal: &hxtypes.RevealOption{DepthInPath: &inPath}}
	require.True(t, RevealDepth(opts2, 9, 1))
	require.False(t, RevealDepth(opts2, 9, 0))

	require.False(t, RevealDepth(hxtypes.PathOptions{}, 0, 0))
}
