package metadata

import "context"

// Inspector answers the class-derivation and class/schema lookup
// questions the query builder and grouping pipeline need (spec.md
// section 4.2's InstanceFilter "derives from" clause, section 4.5's
// base-class grouping).
type Inspector interface {
	// ClassDerivesFrom reports whether derivedClass is, or derives from,
	// baseClass. A class derives from itself.
	ClassDerivesFrom(ctx context.Context, derivedClass, baseClass string) (bool, error)

	// GetClass returns metadata for a single class.
	GetClass(ctx context.Context, fullClassName string) (*ClassInfo, error)

	// GetSchema returns metadata for a named schema.
	GetSchema(ctx context.Context, name string) (*SchemaInfo, error)

	// GetProperty looks up a single property of a class, searching base
	// classes if the class does not declare it directly. Callers use this
	// to reject filter rules naming a struct, array, or non-existent
	// property (spec.md section 4.2's "Struct/array/non-existent
	// properties raise errors").
	GetProperty(ctx context.Context, fullClassName, propertyName string) (*PropertyInfo, error)
}

// classGraph is the in-memory adjacency structure backing the default
// Inspector: className -> direct base class names, generalizing
// internal/graph.Graph's Children/Parents adjacency maps from a table
// dependency tree to a class-derivation DAG.
type classGraph struct {
	classes map[string]*ClassInfo
	schemas map[string]*SchemaInfo
}

func newClassGraph() *classGraph {
	return &classGraph{
		classes: make(map[string]*ClassInfo),
		schemas: make(map[string]*SchemaInfo),
	}
}

func (g *classGraph) addClass(info *ClassInfo) {
	g.classes[info.FullClassName] = info
}

func (g *classGraph) addSchema(info *SchemaInfo) {
	g.schemas[info.Name] = info
}

// canReach performs memoized DFS over the base-class adjacency, mirroring
// internal/graph.Graph.dfsCanReach's visited-set walk over Children edges.
func (g *classGraph) canReach(current, target string, visited map[string]bool, isStart bool) bool {
	if current == target && !isStart {
		return true
	}
	if visited[current] {
		return false
	}
	visited[current] = true

	info, ok := g.classes[current]
	if !ok {
		return false
	}
	for _, base := range info.BaseClasses {
		if g.canReach(base, target, visited, false) {
			return true
		}
	}
	return false
}

func (g *classGraph) derivesFrom(derived, base string) bool {
	if derived == base {
		return true
	}
	visited := make(map[string]bool)
	return g.canReach(derived, base, visited, true)
}

// findProperty searches className, then its base classes depth-first, for
// a property named propertyName.
func (g *classGraph) findProperty(className, propertyName string, visited map[string]bool) (*PropertyInfo, bool) {
	if visited[className] {
		return nil, false
	}
	visited[className] = true

	info, ok := g.classes[className]
	if !ok {
		return nil, false
	}
	for i := range info.Properties {
		if info.Properties[i].Name == propertyName {
			return &info.Properties[i], true
		}
	}
	for _, base := range info.BaseClasses {
		if prop, ok := g.findProperty(base, propertyName, visited); ok {
			return prop, true
		}
	}
	return nil, false
}
