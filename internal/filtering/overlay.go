// Package filtering implements the identifier-path narrowing overlay
// (spec.md section 4.6): a hierarchy provider may be configured with a
// set of root-to-leaf identifier paths, and every level resolved below
// the root is narrowed to only the branches that still lead to one of
// those paths, until a path's target is reached — after which its
// descendants run unfiltered again.
package filtering

import (
	"context"
	"sync"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

// MatchState is threaded down one branch of the hierarchy as it is
// resolved level by level. It is deliberately just a view over the same
// []hxtypes.IdentifierPath shape spec.md section 3 exposes on a produced
// node's FilteredChildrenIdentifierPaths: Provider can hand a
// previously-produced node's own field straight back in as the state to
// resolve that node's children under, without this package needing any
// opaque, provider-only representation.
type MatchState struct {
	remaining               []hxtypes.IdentifierPath
	hasFilterTargetAncestor bool
}

// StateFromChildPaths rebuilds a MatchState from a node's own
// FilteredChildrenIdentifierPaths/HasFilterTargetAncestor fields, the
// public record of a previously classified node's filtering state.
func StateFromChildPaths(paths []hxtypes.IdentifierPath, hasFilterTargetAncestor bool) MatchState {
	return MatchState{remaining: paths, hasFilterTargetAncestor: hasFilterTargetAncestor}
}

// ChildPaths returns the paths state carries for its children, suitable
// for storing on a produced node's FilteredChildrenIdentifierPaths.
func (s MatchState) ChildPaths() []hxtypes.IdentifierPath { return s.remaining }

// HasFilterTargetAncestor reports spec.md section 4.6's
// hasFilterTargetAncestor flag for the branch this state describes.
func (s MatchState) HasFilterTargetAncestor() bool { return s.hasFilterTargetAncestor }

// Active reports whether this branch still has any path left to match
// (false once every path diverged, meaning the branch should be pruned
// entirely — unless it is already past a filter target, in which case
// it is never pruned).
func (s MatchState) Active() bool {
	return s.hasFilterTargetAncestor || len(s.remaining) > 0
}

// Overlay is the filtering overlay configured with a fixed set of
// identifier paths (spec.md section 4.6). It is safe for concurrent use
// across the multiple getNodes calls a provider may have in flight.
type Overlay struct {
	paths     []hxtypes.IdentifierPath
	inspector metadata.Inspector

	mu             sync.Mutex
	classMatchMemo map[[2]string]bool
}

// New creates an Overlay over paths. An empty paths slice is a no-op
// overlay: RootState().Active() is false and every definition/row passes
// through unfiltered, matching "no identifier-path filter configured".
func New(paths []hxtypes.IdentifierPath, inspector metadata.Inspector) *Overlay {
	return &Overlay{paths: paths, inspector: inspector, classMatchMemo: make(map[[2]string]bool)}
}

// Configured reports whether any identifier path is active.
func (o *Overlay) Configured() bool {
	return len(o.paths) > 0
}

// RootState returns the MatchState for the root level: every configured
// path starts active with none of its steps yet matched.
func (o *Overlay) RootState() MatchState {
	if len(o.paths) == 0 {
		return MatchState{}
	}
	cp := make([]hxtypes.IdentifierPath, len(o.paths))
	copy(cp, o.paths)
	return MatchState{remaining: cp}
}

// AllowedGenericNodeIDs returns the set of generic node IDs that may
// legally appear at the next step of state's branch, per spec.md
// section 4.6's "Generic definitions keep only those whose node's
// generic key equals some first-step identifier on a path whose prefix
// matches the current parent". restrict is false when no narrowing
// should happen at all (filtering unconfigured, or the branch is past a
// filter target).
func (o *Overlay) AllowedGenericNodeIDs(state MatchState) (ids map[string]bool, restrict bool) {
	if state.hasFilterTargetAncestor || !o.Configured() {
		return nil, false
	}
	ids = make(map[string]bool)
	for _, p := range state.remaining {
		if len(p.Path) == 0 {
			continue
		}
		if step := p.Path[0]; !step.IsInstance {
			ids[step.ID] = true
		}
	}
	return ids, true
}

// TargetInstanceIDs returns the set of instance IDs allowed at the next
// step of state's branch, used to narrow the instance-node SELECT via
// querybuilder.FilteringContext.TargetIDs. restrict is false when the
// query should run unfiltered (filtering not configured, or the branch
// is already past a target).
func (o *Overlay) TargetInstanceIDs(state MatchState) (ids []string, restrict bool) {
	if state.hasFilterTargetAncestor || !o.Configured() {
		return nil, false
	}
	seen := make(map[string]bool)
	for _, p := range state.remaining {
		if len(p.Path) == 0 {
			continue
		}
		step := p.Path[0]
		if step.IsInstance && !seen[step.ID] {
			seen[step.ID] = true
			ids = append(ids, step.ID)
		}
	}
	return ids, true
}

// MatchGenericDefinitions narrows a level's generic definitions to the
// ones whose declared node ID is a legal next step of state's branch.
// Query (instance) definitions are never dropped here: they are narrowed
// at query time instead, via TargetInstanceIDs.
func (o *Overlay) MatchGenericDefinitions(state MatchState, defs []hxconfig.LevelDefinition) []hxconfig.LevelDefinition {
	ids, restrict := o.AllowedGenericNodeIDs(state)
	if !restrict {
		return defs
	}
	out := make([]hxconfig.LevelDefinition, 0, len(defs))
	for _, d := range defs {
		if d.Generic == nil || ids[d.Generic.NodeID] {
			out = append(out, d)
		}
	}
	return out
}

// Classification is the per-node result of matching one produced node's
// identifier against its branch's active paths.
type Classification struct {
	Next                    MatchState
	IsFilterTarget          bool
	TargetOptions           hxtypes.PathOptions
	HasFilterTargetAncestor bool
}

// Classify matches identifier (the node just produced at this level)
// against state's active paths, returning the MatchState its children
// should be resolved under (spec.md section 4.6's path matching and
// hasFilterTargetAncestor propagation). matched is false when
// identifier doesn't continue any active path and filtering is still in
// force, meaning the node should be dropped entirely.
func (o *Overlay) Classify(ctx context.Context, state MatchState, identifier hxtypes.HierarchyNodeIdentifier) (cls Classification, matched bool) {
	if state.hasFilterTargetAncestor || !o.Configured() {
		return Classification{Next: state, HasFilterTargetAncestor: state.hasFilterTargetAncestor}, true
	}

	var next []hxtypes.IdentifierPath
	var isTarget bool
	var options hxtypes.PathOptions
	for _, p := range state.remaining {
		if len(p.Path) == 0 {
			continue
		}
		step := p.Path[0]
		if !o.stepMatches(ctx, step, identifier) {
			continue
		}
		if len(p.Path) == 1 {
			isTarget = true
			if p.Options.AutoExpand {
				options.AutoExpand = true
			}
			if p.Options.Reveal != nil {
				options.Reveal = p.Options.Reveal
			}
			continue
		}
		next = append(next, hxtypes.IdentifierPath{Path: p.Path[1:], Options: p.Options})
	}

	if !isTarget && len(next) == 0 {
		return Classification{}, false
	}

	return Classification{
		Next:                    MatchState{remaining: next, hasFilterTargetAncestor: isTarget},
		IsFilterTarget:          isTarget,
		TargetOptions:           options,
		HasFilterTargetAncestor: state.hasFilterTargetAncestor,
	}, true
}

// stepMatches implements spec.md section 4.6's "Path matching": ids
// equal and, for instance identifiers, classes equal or one derives
// from the other. Class-derivation checks are memoized by (derived,
// base) class-name pair, since the same pair recurs across every
// sibling row of a wide result set sharing one query's class.
func (o *Overlay) stepMatches(ctx context.Context, step, identifier hxtypes.HierarchyNodeIdentifier) bool {
	if step.IsInstance != identifier.IsInstance {
		return false
	}
	if step.ID != identifier.ID {
		return false
	}
	if step.IModelKey != identifier.IModelKey {
		return false
	}
	if !step.IsInstance {
		return step.Source == identifier.Source
	}
	if step.ClassName == identifier.ClassName {
		return true
	}
	if o.inspector == nil {
		return false
	}
	return o.classesRelated(ctx, identifier.ClassName, step.ClassName) ||
		o.classesRelated(ctx, step.ClassName, identifier.ClassName)
}

func (o *Overlay) classesRelated(ctx context.Context, derived, base string) bool {
	key := [2]string{derived, base}
	o.mu.Lock()
	if v, ok := o.classMatchMemo[key]; ok {
		o.mu.Unlock()
		return v
	}
	o.mu.Unlock()

	ok, err := o.inspector.ClassDerivesFrom(ctx, derived, base)
	related := err == nil && ok

	o.mu.Lock()
	o.classMatchMemo[key] = related
	o.mu.Unlock()
	return related
}
