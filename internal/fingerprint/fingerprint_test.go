package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

func TestParent_RootIsStableAndDistinctFromAnyNode(t *testing.T) {
	root1 := Parent(nil)
	root2 := Parent(nil)
	require.Equal(t, root1, root2)

	node := hxtypes.HierarchyNode{Key: hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "S.A", ID: "0x1"})}
	require.NotEqual(t, root1, Parent(&node))
}

func TestParent_DistinguishesPathNotJustKey(t *testing.T) {
	a := hxtypes.HierarchyNode{
		Key:        hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "S.A", ID: "0x1"}),
		ParentKeys: []hxtypes.NodeKey{hxtypes.GenericKey("root-a", "src")},
	}
	b := hxtypes.HierarchyNode{
		Key:        hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "S.A", ID: "0x1"}),
		ParentKeys: []hxtypes.NodeKey{hxtypes.GenericKey("root-b", "src")},
	}
	require.NotEqual(t, Parent(&a), Parent(&b))
}

func TestParent_DeterministicForEqualInput(t *testing.T) {
	n := hxtypes.HierarchyNode{Key: hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "S.A", ID: "0x1"})}
	require.Equal(t, Parent(&n), Parent(&n))
}

func TestVariation_DiffersBySizeLimitAndFilter(t *testing.T) {
	base := Variation("", 0)
	withLimit := Variation("", 10)
	withFilter := Variation(`{"rule":"x"}`, 0)

	require.NotEqual(t, base, withLimit)
	require.NotEqual(t, base, withFilter)
	require.NotEqual(t, withLimit, withFilter)
	require.Equal(t, base, Variation("", 0))
}
