package pipeline

import (
	"context"
	"sort"
	"unicode"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// Sort buffers the whole input and re-emits it ordered by
// natural-case-insensitive label comparison (spec.md section 4.4 step
// 9). Buffering is unavoidable here: any node's final position depends
// on every sibling's label, so this is the one stage that cannot stream
// element-by-element.
func Sort() Stage {
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)
			var nodes []hxtypes.HierarchyNode
			for node := range in {
				nodes = append(nodes, node)
			}
			sort.SliceStable(nodes, func(i, j int) bool {
				return NaturalLess(nodes[i].Label, nodes[j].Label)
			})
			for _, node := range nodes {
				if !emit(ctx, out, node) {
					return
				}
			}
		}()
		return out
	}
}

// NaturalLess compares a and b case-insensitively, treating embedded
// digit runs as numbers so "Item 2" sorts before "Item 10". Exported so
// internal/provider's MergingProvider (spec.md section 4.8, "Provider
// Merger") can order several providers' interleaved output by the same
// rule this stage already uses, rather than reimplementing natural sort.
func NaturalLess(a, b string) bool {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		ca, cb := ar[i], br[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, ni := scanNumber(ar, i)
			nb, nj := scanNumber(br, j)
			if na != nb {
				return na < nb
			}
			i, j = ni, nj
			continue
		}
		la, lb := unicode.ToLower(ca), unicode.ToLower(cb)
		if la != lb {
			return la < lb
		}
		i++
		j++
	}
	return len(ar)-i < len(br)-j
}

func scanNumber(r []rune, start int) (int64, int) {
	var n int64
	i := start
	for i < len(r) && unicode.IsDigit(r[i]) {
		n = n*10 + int64(r[i]-'0')
		i++
	}
	return n, i
}
