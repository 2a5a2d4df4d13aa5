package hxconfig

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "pass",
			Database: "testdb",
		},
		Cache: CacheConfig{
			VariationsPerParent: 8,
			MaxParents:          512,
		},
		QueryLimits: QueryLimitsConfig{
			DefaultRowLimit: 1000,
			HardRowLimit:    10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Definitions: DefinitionsConfig{
			Path: "hierarchies.yaml",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestInvalidConfig_MissingSourceHost(t *testing.T) {
	cfg := validConfig()
	cfg.Source.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "source.host") {
		t.Errorf("expected error to mention source.host, got: %v", err)
	}
}

func TestInvalidConfig_HardLimitBelowDefault(t *testing.T) {
	cfg := validConfig()
	cfg.QueryLimits.HardRowLimit = 100
	cfg.QueryLimits.DefaultRowLimit = 1000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "hard_row_limit") {
		t.Errorf("expected error to mention hard_row_limit, got: %v", err)
	}
}

func TestInvalidConfig_BadTLS(t *testing.T) {
	cfg := validConfig()
	cfg.Source.TLS = "yolo"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "tls") {
		t.Errorf("expected error to mention tls, got: %v", err)
	}
}

func TestDefinitionsDocument_Validate_RequiresAtLeastOneHierarchy(t *testing.T) {
	doc := &DefinitionsDocument{}
	if err := doc.Validate(); err == nil {
		t.Fatal("expected validation error for empty document")
	}
}

func TestDefinitionsDocument_Validate_LevelNeedsGenericOrQuery(t *testing.T) {
	doc := &DefinitionsDocument{
		Hierarchies: map[string]HierarchyDefinition{
			"tree": {
				RootLevels: []LevelDefinition{
					{ID: "root", Predicate: PredicateSpec{IsRoot: true}},
				},
			},
		},
	}

	err := doc.Validate()
	if err == nil {
		t.Fatal("expected validation error when neither generic nor query is set")
	}
	if !strings.Contains(err.Error(), "must declare either generic or query") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefinitionsDocument_Validate_ValidDocument(t *testing.T) {
	doc := &DefinitionsDocument{
		Hierarchies: map[string]HierarchyDefinition{
			"tree": {
				RootLevels: []LevelDefinition{
					{
						ID:        "root",
						Predicate: PredicateSpec{IsRoot: true},
						Query:     &QuerySpec{FullClassName: "Schema.Model"},
						Children: []LevelDefinition{
							{
								ID:        "elements",
								Predicate: PredicateSpec{ParentInstancesOfClass: "Schema.Model"},
								Query:     &QuerySpec{FullClassName: "Schema.Element"},
							},
						},
					},
				},
			},
		},
	}

	if err := doc.Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}
