package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

func TestTree_PrintsOneLinePerNode(t *testing.T) {
	nodes := []hxtypes.HierarchyNode{
		{Key: hxtypes.GenericKey("root", ""), Label: "Root", Children: hxtypes.ChildrenYes},
		{Key: hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: "S.C", ID: "0x1"}), Label: "Alpha", Children: hxtypes.ChildrenNo},
	}

	var buf bytes.Buffer
	Tree(&buf, nodes, 0)

	out := buf.String()
	require.Contains(t, out, "Root")
	require.Contains(t, out, "Alpha")
	require.Contains(t, out, "children=yes")
	require.Contains(t, out, "children=no")
}

func TestHeaderAndSection_Print(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Plan: %s", "things")
	Section(&buf, "Root Levels")

	out := buf.String()
	require.Contains(t, out, "Plan: things")
	require.Contains(t, out, "[Root Levels]")
}
