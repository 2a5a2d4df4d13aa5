package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// SQLInspector is the default Inspector, backed by a metadata schema held
// in a `database/sql` connection (the engine's own class/property catalog
// tables, analogous to ECDb's meta schema). It loads the class graph once
// and answers derivation queries from an in-memory cache, the way
// internal/graph.Graph answers reachability from an adjacency map built
// once at job-plan time.
type SQLInspector struct {
	db *sql.DB

	mu      sync.RWMutex
	graph   *classGraph
	loaded  bool
	derived map[derivationKey]bool
}

type derivationKey struct {
	derived string
	base    string
}

// NewSQLInspector creates an Inspector over an already-connected database.
func NewSQLInspector(db *sql.DB) *SQLInspector {
	return &SQLInspector{
		db:      db,
		graph:   newClassGraph(),
		derived: make(map[derivationKey]bool),
	}
}

// ensureLoaded lazily loads the class/schema catalog on first use.
func (s *SQLInspector) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	if err := s.loadClasses(ctx); err != nil {
		return fmt.Errorf("failed to load class metadata: %w", err)
	}
	if err := s.loadProperties(ctx); err != nil {
		return fmt.Errorf("failed to load property metadata: %w", err)
	}
	if err := s.loadSchemas(ctx); err != nil {
		return fmt.Errorf("failed to load schema metadata: %w", err)
	}
	s.loaded = true
	return nil
}

func (s *SQLInspector) loadClasses(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT full_class_name, base_class_name
		FROM meta_class_hierarchy`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fullName, baseName sql.NullString
		if err := rows.Scan(&fullName, &baseName); err != nil {
			return err
		}
		if !fullName.Valid {
			continue
		}
		info, ok := s.graph.classes[fullName.String]
		if !ok {
			info = &ClassInfo{FullClassName: fullName.String}
			s.graph.addClass(info)
		}
		if baseName.Valid && baseName.String != "" {
			info.BaseClasses = append(info.BaseClasses, baseName.String)
		}
	}
	return rows.Err()
}

// loadProperties loads each class's declared properties, including their
// kind ("struct", "<type>[]" for arrays, or a scalar type name), so the
// query builder can reject filters against struct and array properties.
func (s *SQLInspector) loadProperties(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT full_class_name, property_name, property_type
		FROM meta_class_properties`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var className, propName, propType sql.NullString
		if err := rows.Scan(&className, &propName, &propType); err != nil {
			return err
		}
		if !className.Valid || !propName.Valid {
			continue
		}
		info, ok := s.graph.classes[className.String]
		if !ok {
			info = &ClassInfo{FullClassName: className.String}
			s.graph.addClass(info)
		}
		info.Properties = append(info.Properties, PropertyInfo{Name: propName.String, Type: propType.String})
	}
	return rows.Err()
}

func (s *SQLInspector) loadSchemas(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT schema_name, full_class_name
		FROM meta_schema_classes`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var schemaName, className string
		if err := rows.Scan(&schemaName, &className); err != nil {
			return err
		}
		info, ok := s.graph.schemas[schemaName]
		if !ok {
			info = &SchemaInfo{Name: schemaName}
			s.graph.addSchema(info)
		}
		info.Classes = append(info.Classes, className)
	}
	return rows.Err()
}

// ClassDerivesFrom reports whether derivedClass is, or derives from,
// baseClass, memoizing the result of the DFS walk.
func (s *SQLInspector) ClassDerivesFrom(ctx context.Context, derivedClass, baseClass string) (bool, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}

	key := derivationKey{derived: derivedClass, base: baseClass}

	s.mu.RLock()
	if result, ok := s.derived[key]; ok {
		s.mu.RUnlock()
		return result, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if result, ok := s.derived[key]; ok {
		return result, nil
	}
	result := s.graph.derivesFrom(derivedClass, baseClass)
	s.derived[key] = result
	return result, nil
}

// GetClass returns metadata for a single class.
func (s *SQLInspector) GetClass(ctx context.Context, fullClassName string) (*ClassInfo, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.graph.classes[fullClassName]
	if !ok {
		return nil, &ClassNotFoundError{FullClassName: fullClassName}
	}
	return info, nil
}

// GetSchema returns metadata for a named schema.
func (s *SQLInspector) GetSchema(ctx context.Context, name string) (*SchemaInfo, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.graph.schemas[name]
	if !ok {
		return nil, &SchemaNotFoundError{Name: name}
	}
	return info, nil
}

// GetProperty looks up a single property of a class, searching base
// classes if not declared directly.
func (s *SQLInspector) GetProperty(ctx context.Context, fullClassName, propertyName string) (*PropertyInfo, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.graph.classes[fullClassName]; !ok {
		return nil, &ClassNotFoundError{FullClassName: fullClassName}
	}
	prop, ok := s.graph.findProperty(fullClassName, propertyName, make(map[string]bool))
	if !ok {
		return nil, &PropertyNotFoundError{FullClassName: fullClassName, PropertyName: propertyName}
	}
	return prop, nil
}
