package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

func testInspector() metadata.Inspector {
	return metadata.NewStaticInspector([]metadata.ClassInfo{
		{FullClassName: "BisCore.PhysicalElement", BaseClasses: []string{"BisCore.GeometricElement3d"}},
		{FullClassName: "BisCore.GeometricElement3d", BaseClasses: []string{"BisCore.Element"}},
		{FullClassName: "BisCore.Element"},
		{FullClassName: "BisCore.Category"},
	}, nil)
}

func TestResolver_Resolve_RootPredicate(t *testing.T) {
	levels := []hxconfig.LevelDefinition{
		{ID: "root-level", Predicate: hxconfig.PredicateSpec{IsRoot: true}},
		{ID: "other", Predicate: hxconfig.PredicateSpec{ParentNodeID: "foo"}},
	}

	resolver := NewResolver(testInspector())
	matched, err := resolver.Resolve(context.Background(), levels, nil)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "root-level", matched[0].Level.ID)
}

func TestResolver_Resolve_GenericParentPredicate(t *testing.T) {
	levels := []hxconfig.LevelDefinition{
		{ID: "models", Predicate: hxconfig.PredicateSpec{ParentNodeID: "subject"}},
		{ID: "unrelated", Predicate: hxconfig.PredicateSpec{ParentNodeID: "other"}},
	}
	parent := &hxtypes.HierarchyNode{Key: hxtypes.GenericKey("subject", "")}

	resolver := NewResolver(testInspector())
	matched, err := resolver.Resolve(context.Background(), levels, parent)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "models", matched[0].Level.ID)
}

func TestResolver_Resolve_OnlyIfNotHandledSuppressedByEarlierMatch(t *testing.T) {
	levels := []hxconfig.LevelDefinition{
		{ID: "specific", Predicate: hxconfig.PredicateSpec{ParentInstancesOfClass: "BisCore.PhysicalElement"}},
		{ID: "fallback", OnlyIfNotHandled: true, Predicate: hxconfig.PredicateSpec{ParentInstancesOfClass: "BisCore.Element"}},
	}
	parent := &hxtypes.HierarchyNode{Key: hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "BisCore.PhysicalElement", ID: "0x1"})}

	resolver := NewResolver(testInspector())
	matched, err := resolver.Resolve(context.Background(), levels, parent)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "specific", matched[0].Level.ID)
}

func TestResolver_Resolve_OnlyIfNotHandledAppliesWhenNothingElseMatched(t *testing.T) {
	levels := []hxconfig.LevelDefinition{
		{ID: "specific", Predicate: hxconfig.PredicateSpec{ParentInstancesOfClass: "BisCore.Category"}},
		{ID: "fallback", OnlyIfNotHandled: true, Predicate: hxconfig.PredicateSpec{ParentInstancesOfClass: "BisCore.Element"}},
	}
	parent := &hxtypes.HierarchyNode{Key: hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "BisCore.PhysicalElement", ID: "0x1"})}

	resolver := NewResolver(testInspector())
	matched, err := resolver.Resolve(context.Background(), levels, parent)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "fallback", matched[0].Level.ID)
}

func TestResolver_Resolve_PolymorphicClassMatch(t *testing.T) {
	levels := []hxconfig.LevelDefinition{
		{ID: "elements", Predicate: hxconfig.PredicateSpec{ParentInstancesOfClass: "BisCore.Element"}},
	}
	parent := &hxtypes.HierarchyNode{Key: hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "BisCore.PhysicalElement", ID: "0x1"})}

	resolver := NewResolver(testInspector())
	matched, err := resolver.Resolve(context.Background(), levels, parent)
	require.NoError(t, err)
	require.Len(t, matched, 1)
}

func TestResolver_Resolve_MultiClassParentGroupsAndConcatenatesInOrder(t *testing.T) {
	levels := []hxconfig.LevelDefinition{
		{ID: "physical", Predicate: hxconfig.PredicateSpec{ParentInstancesOfClass: "BisCore.PhysicalElement"}},
		{ID: "category", Predicate: hxconfig.PredicateSpec{ParentInstancesOfClass: "BisCore.Category"}},
	}
	parent := &hxtypes.HierarchyNode{Key: hxtypes.InstancesKey(
		hxtypes.InstanceKey{ClassName: "BisCore.PhysicalElement", ID: "0x1"},
		hxtypes.InstanceKey{ClassName: "BisCore.Category", ID: "0x2"},
	)}

	resolver := NewResolver(testInspector())
	matched, err := resolver.Resolve(context.Background(), levels, parent)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	require.Equal(t, "physical", matched[0].Level.ID)
	require.Equal(t, []string{"0x1"}, matched[0].ContextInstanceIDs)
	require.Equal(t, "category", matched[1].Level.ID)
	require.Equal(t, []string{"0x2"}, matched[1].ContextInstanceIDs)
}

func TestResolver_Resolve_UnrecognizedParentShapeIsEmptyNotError(t *testing.T) {
	levels := []hxconfig.LevelDefinition{
		{ID: "root-level", Predicate: hxconfig.PredicateSpec{IsRoot: true}},
	}
	// A grouping-kind key is neither generic nor an instance node.
	parent := &hxtypes.HierarchyNode{Key: hxtypes.ClassGroupingKey("BisCore.PhysicalElement")}

	resolver := NewResolver(testInspector())
	matched, err := resolver.Resolve(context.Background(), levels, parent)
	require.NoError(t, err)
	require.Empty(t, matched)
}

func TestGroupInstanceKeysByClass_PreservesFirstSeenOrder(t *testing.T) {
	groups := GroupInstanceKeysByClass([]hxtypes.InstanceKey{
		{ClassName: "B", ID: "1"},
		{ClassName: "A", ID: "2"},
		{ClassName: "B", ID: "3"},
	})
	require.Len(t, groups, 2)
	require.Equal(t, "B", groups[0].ClassName)
	require.Equal(t, []string{"1", "3"}, groups[0].IDs)
	require.Equal(t, "A", groups[1].ClassName)
	require.Equal(t, []string{"2"}, groups[1].IDs)
}
