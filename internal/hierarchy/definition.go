// Package hierarchy implements the Hierarchy Definition contract (spec.md
// section 4.1): matching a parent node against a declarative set of
// level definitions, honoring onlyIfNotHandled fallback ordering, and
// grouping an instance-key parent's multi-class keys before resolving.
package hierarchy

import (
	"context"
	"fmt"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

// Definition is the resolved shape a matched LevelDefinition takes for a
// given parent: either a synthetic generic node or an instance-producing
// query, mirroring spec.md section 4.1's
// `GenericNodeDefinition | InstanceNodesQueryDefinition` union.
type Definition struct {
	Level *hxconfig.LevelDefinition

	// ContextClassName is set when this definition was resolved against
	// one class group of a multi-class instance-key parent (spec.md
	// section 4.1, "instance-keys grouping for parents"). Empty for
	// root/generic-parent resolution.
	ContextClassName string

	// ContextInstanceIDs carries the grouped IDs for the class above.
	ContextInstanceIDs []string
}

// IsGeneric reports whether this definition declares a synthetic node.
func (d Definition) IsGeneric() bool {
	return d.Level.Generic != nil
}

// IsQuery reports whether this definition declares an instance query.
func (d Definition) IsQuery() bool {
	return d.Level.Query != nil
}

// Resolver matches hierarchy level definitions against a parent node.
type Resolver struct {
	inspector metadata.Inspector
}

// NewResolver creates a Resolver backed by the given class metadata
// Inspector (needed for polymorphic `parentInstancesOfClass` matching).
func NewResolver(inspector metadata.Inspector) *Resolver {
	return &Resolver{inspector: inspector}
}

// Resolve returns the level definitions that apply to parent out of
// levels, in declaration order, honoring onlyIfNotHandled. parent nil
// denotes the synthetic root (spec.md section 4.1).
//
// Resolve never errors on an unrecognized parent shape: it returns an
// empty, nil-error result, matching spec.md section 4.1's "returns an
// empty level for unknown parent types (defensive); does not panic."
func (r *Resolver) Resolve(ctx context.Context, levels []hxconfig.LevelDefinition, parent *hxtypes.HierarchyNode) ([]Definition, error) {
	if parent == nil {
		return r.matchAgainst(ctx, levels, func(p hxconfig.PredicateSpec) (bool, error) {
			return p.IsRoot, nil
		}, "")
	}

	if parent.IsGeneric() {
		nodeID := parent.Key.ID
		return r.matchAgainst(ctx, levels, func(p hxconfig.PredicateSpec) (bool, error) {
			return p.ParentNodeID != "" && p.ParentNodeID == nodeID, nil
		}, "")
	}

	if parent.IsInstanceNode() {
		return r.resolveInstanceParent(ctx, levels, parent)
	}

	// Unrecognized parent shape (e.g. an un-keyed grouping node with no
	// instances yet): defensive empty result.
	return nil, nil
}

// resolveInstanceParent implements "instance-keys grouping for
// parents": groups the parent's instance keys by class, resolves each
// group's matching definitions independently (concurrently, via
// iter.Map, which preserves input order in its output), then
// concatenates the per-group results in group order.
func (r *Resolver) resolveInstanceParent(ctx context.Context, levels []hxconfig.LevelDefinition, parent *hxtypes.HierarchyNode) ([]Definition, error) {
	groups := GroupInstanceKeysByClass(parent.Key.InstanceKeys.Slice())

	results, err := mapGroupsConcurrently(groups, func(g InstanceGroup) ([]Definition, error) {
		className := g.ClassName
		matched, err := r.matchAgainst(ctx, levels, func(p hxconfig.PredicateSpec) (bool, error) {
			if p.ParentInstancesOfClass == "" {
				return false, nil
			}
			if p.ParentInstancesOfClass == className {
				return true, nil
			}
			return r.inspector.ClassDerivesFrom(ctx, className, p.ParentInstancesOfClass)
		}, className)
		if err != nil {
			return nil, err
		}
		for i := range matched {
			matched[i].ContextInstanceIDs = g.IDs
		}
		return matched, nil
	})
	if err != nil {
		return nil, err
	}

	var out []Definition
	for _, group := range results {
		out = append(out, group...)
	}
	return out, nil
}

// matchAgainst applies predicateMatches over levels in order, honoring
// onlyIfNotHandled: a definition marked onlyIfNotHandled is skipped once
// any earlier definition in the same call has already matched.
func (r *Resolver) matchAgainst(
	ctx context.Context,
	levels []hxconfig.LevelDefinition,
	predicateMatches func(hxconfig.PredicateSpec) (bool, error),
	contextClassName string,
) ([]Definition, error) {
	var out []Definition
	handled := false
	for i := range levels {
		lvl := &levels[i]
		if lvl.OnlyIfNotHandled && handled {
			continue
		}
		ok, err := predicateMatches(lvl.Predicate)
		if err != nil {
			return nil, fmt.Errorf("evaluating predicate for definition %q: %w", lvl.ID, err)
		}
		if !ok {
			continue
		}
		out = append(out, Definition{Level: lvl, ContextClassName: contextClassName})
		handled = true
	}
	return out, nil
}
