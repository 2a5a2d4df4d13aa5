package metadata

import "context"

// StaticInspector is an in-memory Inspector for tests and small embedded
// deployments that already know their full class/schema catalog.
type StaticInspector struct {
	graph *classGraph
}

// NewStaticInspector builds an Inspector from an explicit class list.
func NewStaticInspector(classes []ClassInfo, schemas []SchemaInfo) *StaticInspector {
	g := newClassGraph()
	for i := range classes {
		c := classes[i]
		g.addClass(&c)
	}
	for i := range schemas {
		s := schemas[i]
		g.addSchema(&s)
	}
	return &StaticInspector{graph: g}
}

func (s *StaticInspector) ClassDerivesFrom(_ context.Context, derivedClass, baseClass string) (bool, error) {
	return s.graph.derivesFrom(derivedClass, baseClass), nil
}

func (s *StaticInspector) GetClass(_ context.Context, fullClassName string) (*ClassInfo, error) {
	info, ok := s.graph.classes[fullClassName]
	if !ok {
		return nil, &ClassNotFoundError{FullClassName: fullClassName}
	}
	return info, nil
}

func (s *StaticInspector) GetSchema(_ context.Context, name string) (*SchemaInfo, error) {
	info, ok := s.graph.schemas[name]
	if !ok {
		return nil, &SchemaNotFoundError{Name: name}
	}
	return info, nil
}

func (s *StaticInspector) GetProperty(_ context.Context, fullClassName, propertyName string) (*PropertyInfo, error) {
	if _, ok := s.graph.classes[fullClassName]; !ok {
		return nil, &ClassNotFoundError{FullClassName: fullClassName}
	}
	prop, ok := s.graph.findProperty(fullClassName, propertyName, make(map[string]bool))
	if !ok {
		return nil, &PropertyNotFoundError{FullClassName: fullClassName, PropertyName: propertyName}
	}
	return prop, nil
}
