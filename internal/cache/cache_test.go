package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

func node(label string) hxtypes.HierarchyNode {
	return hxtypes.HierarchyNode{Label: label}
}

func TestCache_PutGet_RoundTrips(t *testing.T) {
	c := New(0, 0)
	c.Put("parentA", "v1", Entry{Nodes: []hxtypes.HierarchyNode{node("a"), node("b")}})

	entry, ok := c.Get("parentA", "v1")
	require.True(t, ok)
	require.Len(t, entry.Nodes, 2)

	_, ok = c.Get("parentA", "missing")
	require.False(t, ok)
	_, ok = c.Get("missingParent", "v1")
	require.False(t, ok)
}

func TestCache_EvictsLeastRecentlyUsedParent(t *testing.T) {
	c := New(2, 2)
	c.Put("p1", "v1", Entry{})
	c.Put("p2", "v1", Entry{})
	c.Put("p3", "v1", Entry{}) // evicts p1, the LRU parent

	_, ok := c.Get("p1", "v1")
	require.False(t, ok)
	_, ok = c.Get("p2", "v1")
	require.True(t, ok)
	_, ok = c.Get("p3", "v1")
	require.True(t, ok)
}

func TestCache_TouchingKeepsParentAlive(t *testing.T) {
	c := New(2, 2)
	c.Put("p1", "v1", Entry{})
	c.Put("p2", "v1", Entry{})
	c.Get("p1", "v1") // promote p1 to MRU
	c.Put("p3", "v1", Entry{}) // should evict p2, not p1

	_, ok := c.Get("p1", "v1")
	require.True(t, ok)
	_, ok = c.Get("p2", "v1")
	require.False(t, ok)
}

func TestCache_EvictsLeastRecentlyUsedVariationWithinParent(t *testing.T) {
	c := New(4, 2)
	c.Put("p1", "v1", Entry{})
	c.Put("p1", "v2", Entry{})
	c.Put("p1", "v3", Entry{}) // evicts v1 within p1's bucket

	_, ok := c.Get("p1", "v1")
	require.False(t, ok)
	_, ok = c.Get("p1", "v2")
	require.True(t, ok)
	_, ok = c.Get("p1", "v3")
	require.True(t, ok)
}

func TestCache_InvalidateParent(t *testing.T) {
	c := New(0, 0)
	c.Put("p1", "v1", Entry{})
	c.InvalidateParent("p1")
	_, ok := c.Get("p1", "v1")
	require.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := New(0, 0)
	c.Put("p1", "v1", Entry{})
	c.Put("p2", "v1", Entry{})
	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestReplay_StreamsAllNodesThenCloses(t *testing.T) {
	entry := Entry{Nodes: []hxtypes.HierarchyNode{node("a"), node("b"), node("c")}}
	ch := Replay(context.Background(), entry)

	var got []string
	for n := range ch {
		got = append(got, n.Label)
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestReplay_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	entry := Entry{Nodes: []hxtypes.HierarchyNode{node("a"), node("b")}}
	ch := Replay(ctx, entry)

	count := 0
	for range ch {
		count++
	}
	require.LessOrEqual(t, count, 2)
}

func TestReplay_SupportsMultipleIndependentReaders(t *testing.T) {
	entry := Entry{Nodes: []hxtypes.HierarchyNode{node("a"), node("b")}}

	first := collect(Replay(context.Background(), entry))
	second := collect(Replay(context.Background(), entry))
	require.Equal(t, first, second)
}

func collect(ch <-chan hxtypes.HierarchyNode) []string {
	var out []string
	for n := range ch {
		out = append(out, n.Label)
	}
	return out
}
