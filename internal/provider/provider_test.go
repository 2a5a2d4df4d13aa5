package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
)

// fakeExecutor serves one canned row set per call, in call order,
// ignoring the SQL text entirely: the provider's wiring is what these
// tests exercise, not the query builder's output (covered separately in
// internal/querybuilder).
type fakeExecutor struct {
	calls [][]queryexec.Row
	n     int
}

func (f *fakeExecutor) Query(ctx context.Context, q queryexec.Query, opts queryexec.Options) (queryexec.RowStream, error) {
	rows := f.calls[f.n%len(f.calls)]
	f.n++
	return &fakeRowStream{rows: rows}, nil
}

type fakeRowStream struct {
	rows []queryexec.Row
	pos  int
}

func (s *fakeRowStream) Next(ctx context.Context) bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}
func (s *fakeRowStream) Scan() (queryexec.Row, error) { return s.rows[s.pos-1], nil }
func (s *fakeRowStream) Err() error                   { return nil }
func (s *fakeRowStream) Close() error                 { return nil }

func instanceRow(id, label string) queryexec.Row {
	return queryexec.Row{
		"ECInstanceId": id,
		"DisplayLabel": label,
	}
}

// TestProvider_S1_BasicLevelsSortedByLabel matches spec.md section 8,
// scenario S1: two root rows in "beta", "alpha" order come back sorted.
func TestProvider_S1_BasicLevelsSortedByLabel(t *testing.T) {
	exec := &fakeExecutor{calls: [][]queryexec.Row{
		{instanceRow("0x1", "beta"), instanceRow("0x2", "alpha")},
		{}, // children of 0x1: none
		{}, // children of 0x2: none
	}}
	insp := metadata.NewStaticInspector(
		[]metadata.ClassInfo{{FullClassName: "S.Root"}, {FullClassName: "S.Child"}},
		nil,
	)
	hier := &hxconfig.HierarchyDefinition{RootLevels: []hxconfig.LevelDefinition{
		{
			ID:        "root",
			Predicate: hxconfig.PredicateSpec{IsRoot: true},
			Query:     &hxconfig.QuerySpec{FullClassName: "S.Root"},
		},
	}}

	p, err := New(Options{Executor: exec, Inspector: insp, Hierarchy: hier})
	require.NoError(t, err)

	ch, err := p.GetNodes(context.Background(), GetNodesOptions{})
	require.NoError(t, err)

	var labels []string
	for n := range ch {
		labels = append(labels, n.Label)
	}
	require.Equal(t, []string{"alpha", "beta"}, labels)
}

// TestProvider_S2_HideInHierarchyReplacesNodeWithChildren matches
// spec.md section 8, scenario S2: a generic "wrap" node flagged
// hideInHierarchy never appears in the output; its children surface in
// its place with empty ParentKeys.
func TestProvider_S2_HideInHierarchyReplacesNodeWithChildren(t *testing.T) {
	exec := &fakeExecutor{calls: [][]queryexec.Row{
		{instanceRow("0x1", "a"), instanceRow("0x2", "b")}, // children of "wrap"
		{}, // determine-children probe for "a"
		{}, // determine-children probe for "b"
	}}
	insp := metadata.NewStaticInspector([]metadata.ClassInfo{{FullClassName: "S.Child"}}, nil)
	hier := &hxconfig.HierarchyDefinition{RootLevels: []hxconfig.LevelDefinition{
		{
			ID:         "wrap",
			Predicate:  hxconfig.PredicateSpec{IsRoot: true},
			Generic:    &hxconfig.GenericNodeSpec{NodeID: "wrap", Label: "wrap"},
			Processing: hxconfig.ProcessingSpec{HideInHierarchy: true},
		},
		{
			ID:        "wrap-children",
			Predicate: hxconfig.PredicateSpec{ParentNodeID: "wrap"},
			Query:     &hxconfig.QuerySpec{FullClassName: "S.Child"},
		},
	}}

	p, err := New(Options{Executor: exec, Inspector: insp, Hierarchy: hier})
	require.NoError(t, err)

	ch, err := p.GetNodes(context.Background(), GetNodesOptions{})
	require.NoError(t, err)

	var labels []string
	for n := range ch {
		labels = append(labels, n.Label)
		require.Empty(t, n.ParentKeys)
	}
	require.Equal(t, []string{"a", "b"}, labels)
}

func TestProvider_New_RequiresExecutorInspectorHierarchy(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Executor: &fakeExecutor{}})
	require.Error(t, err)

	_, err = New(Options{Executor: &fakeExecutor{}, Inspector: metadata.NewStaticInspector(nil, nil)})
	require.Error(t, err)
}
