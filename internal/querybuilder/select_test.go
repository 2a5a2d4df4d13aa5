package querybuilder

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
)

func TestFactory_BuildInstanceNodesQuery_FixedColumnOrder(t *testing.T) {
	factory := NewFactory(testInspector())

	q, err := factory.BuildInstanceNodesQuery(context.Background(), &hxconfig.QuerySpec{
		FullClassName: "BisCore.PhysicalElement",
	}, hxconfig.ProcessingSpec{}, nil, FilteringContext{})
	require.NoError(t, err)

	last := -1
	for _, col := range InstanceNodeColumns {
		require.Contains(t, q.SQL, col)
		idx := strings.Index(q.SQL, " AS "+col)
		require.Greater(t, idx, last)
		last = idx
	}
}

func TestFactory_BuildInstanceNodesQuery_UnknownClass(t *testing.T) {
	factory := NewFactory(testInspector())

	_, err := factory.BuildInstanceNodesQuery(context.Background(), &hxconfig.QuerySpec{
		FullClassName: "Missing.Class",
	}, hxconfig.ProcessingSpec{}, nil, FilteringContext{})
	require.Error(t, err)
	require.IsType(t, &UnknownSchemaOrClassError{}, err)
}

func TestFactory_BuildInstanceNodesQuery_AppliesFilter(t *testing.T) {
	factory := NewFactory(testInspector())

	filter := &GenericInstanceFilter{
		Rule: Compare("BisCore.PhysicalElement", "CodeValue", TypeString, OpEqual, "Wall-1"),
	}
	q, err := factory.BuildInstanceNodesQuery(context.Background(), &hxconfig.QuerySpec{
		FullClassName: "BisCore.PhysicalElement",
	}, hxconfig.ProcessingSpec{}, filter, FilteringContext{})
	require.NoError(t, err)
	require.Contains(t, q.SQL, "CodeValue")
	require.Equal(t, []any{"Wall-1"}, q.Args)
}

func TestFactory_BuildInstanceNodesQuery_FilteringActiveAddsCTE(t *testing.T) {
	factory := NewFactory(testInspector())

	q, err := factory.BuildInstanceNodesQuery(context.Background(), &hxconfig.QuerySpec{
		FullClassName: "BisCore.PhysicalElement",
	}, hxconfig.ProcessingSpec{}, nil, FilteringContext{
		Active:    true,
		TargetIDs: []string{"0x1", "0x2"},
	})
	require.NoError(t, err)
	require.Contains(t, q.SQL, "WITH FilteringInfo")
	require.Contains(t, q.SQL, "INNER JOIN")
	require.Equal(t, []any{"0x1", "0x2"}, q.Args)
}

func TestFactory_BuildInstanceNodesQuery_HasFilterTargetAncestorUsesLeftJoin(t *testing.T) {
	factory := NewFactory(testInspector())

	q, err := factory.BuildInstanceNodesQuery(context.Background(), &hxconfig.QuerySpec{
		FullClassName: "BisCore.PhysicalElement",
	}, hxconfig.ProcessingSpec{}, nil, FilteringContext{
		Active:                  true,
		HasFilterTargetAncestor: true,
	})
	require.NoError(t, err)
	require.Contains(t, q.SQL, "LEFT JOIN")
}

func TestFactory_BuildInstanceNodesQuery_EncodesGroupingSelector(t *testing.T) {
	factory := NewFactory(testInspector())

	q, err := factory.BuildInstanceNodesQuery(context.Background(), &hxconfig.QuerySpec{
		FullClassName: "BisCore.PhysicalElement",
	}, hxconfig.ProcessingSpec{
		Grouping: &hxconfig.GroupingSpec{ByLabel: true},
	}, nil, FilteringContext{})
	require.NoError(t, err)
	require.Contains(t, q.SQL, `"by_label":true`)
}
