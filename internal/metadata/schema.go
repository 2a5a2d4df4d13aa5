// Package metadata exposes schema introspection the hierarchy engine needs
// to resolve class derivation, a capability spec.md section 4.2 assumes
// the underlying store provides ("InstanceFilter ... derives from
// fullClassName").
package metadata

import "fmt"

// ClassInfo describes one ECSQL-like class: its full name, its direct
// base classes, and the properties the query builder and grouping
// pipeline can reference.
type ClassInfo struct {
	FullClassName string
	BaseClasses   []string
	Properties    []PropertyInfo
}

// PropertyInfo describes a single property of a class.
type PropertyInfo struct {
	Name string
	Type string // e.g. "string", "long", "double", "navigation"
}

// SchemaInfo groups the classes that belong to one ECSchema-like namespace.
type SchemaInfo struct {
	Name    string
	Classes []string
}

// ClassNotFoundError reports a class name absent from the metadata graph.
type ClassNotFoundError struct {
	FullClassName string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class %q not found in metadata", e.FullClassName)
}

// SchemaNotFoundError reports a schema name absent from the metadata graph.
type SchemaNotFoundError struct {
	Name string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema %q not found in metadata", e.Name)
}

// PropertyNotFoundError reports a property name absent from a class and
// all of its base classes.
type PropertyNotFoundError struct {
	FullClassName string
	PropertyName  string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("property %q not found on class %q", e.PropertyName, e.FullClassName)
}
