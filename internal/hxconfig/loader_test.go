package hxconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
source:
  host: localhost
  port: 3306
  user: testuser
  password: testpass
  database: testdb
  tls: disable
  max_connections: 5
  max_idle_connections: 2

cache:
  variations_per_parent: 4
  max_parents: 64

query_limits:
  default_row_limit: 200
  hard_row_limit: 2000

logging:
  level: debug
  format: text
  output: stdout

definitions:
  path: ./custom-hierarchies.yaml
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Source.Host != "localhost" {
		t.Errorf("expected source host 'localhost', got %s", cfg.Source.Host)
	}
	if cfg.Source.Port != 3306 {
		t.Errorf("expected source port 3306, got %d", cfg.Source.Port)
	}
	if cfg.Cache.VariationsPerParent != 4 {
		t.Errorf("expected variations_per_parent 4, got %d", cfg.Cache.VariationsPerParent)
	}
	if cfg.QueryLimits.DefaultRowLimit != 200 {
		t.Errorf("expected default_row_limit 200, got %d", cfg.QueryLimits.DefaultRowLimit)
	}
	if cfg.Definitions.Path != "./custom-hierarchies.yaml" {
		t.Errorf("expected definitions path override, got %s", cfg.Definitions.Path)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	os.Setenv("TEST_DB_HOST", "env-host")
	os.Setenv("TEST_DB_USER", "env-user")
	os.Setenv("TEST_DB_PASS", "env-pass")
	defer func() {
		os.Unsetenv("TEST_DB_HOST")
		os.Unsetenv("TEST_DB_USER")
		os.Unsetenv("TEST_DB_PASS")
	}()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-env.yaml")

	configContent := `
source:
  host: ${TEST_DB_HOST}
  port: 3306
  user: ${TEST_DB_USER}
  password: ${TEST_DB_PASS}
  database: testdb
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Source.Host != "env-host" {
		t.Errorf("expected source host 'env-host', got %s", cfg.Source.Host)
	}
	if cfg.Source.User != "env-user" {
		t.Errorf("expected source user 'env-user', got %s", cfg.Source.User)
	}
	if cfg.Source.Password != "env-pass" {
		t.Errorf("expected source password 'env-pass', got %s", cfg.Source.Password)
	}
}

func TestExpandEnvVar(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "test-value"},
		{"$TEST_VAR", "test-value"},
		{"prefix-${TEST_VAR}-suffix", "prefix-test-value-suffix"},
		{"${NONEXISTENT}", "${NONEXISTENT}"},
		{"no-vars-here", "no-vars-here"},
	}

	for _, tt := range tests {
		result := expandEnvVar(tt.input)
		if result != tt.expected {
			t.Errorf("expandEnvVar(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadDefinitions(t *testing.T) {
	tmpDir := t.TempDir()
	defPath := filepath.Join(tmpDir, "hierarchies.yaml")

	defContent := `
hierarchies:
  model_tree:
    root_levels:
      - id: root_models
        predicate:
          is_root: true
        query:
          full_class_name: BisCore.Model
        children:
          - id: model_elements
            predicate:
              parent_instances_of_class: BisCore.Model
            query:
              full_class_name: BisCore.Element
`
	if err := os.WriteFile(defPath, []byte(defContent), 0644); err != nil {
		t.Fatalf("failed to write test definitions: %v", err)
	}

	doc, err := LoadDefinitions(defPath)
	if err != nil {
		t.Fatalf("failed to load definitions: %v", err)
	}

	hd, err := doc.GetHierarchy("model_tree")
	if err != nil {
		t.Fatalf("unexpected error getting hierarchy: %v", err)
	}
	if len(hd.RootLevels) != 1 {
		t.Fatalf("expected 1 root level, got %d", len(hd.RootLevels))
	}
	if hd.RootLevels[0].Query.FullClassName != "BisCore.Model" {
		t.Errorf("expected full_class_name 'BisCore.Model', got %s", hd.RootLevels[0].Query.FullClassName)
	}
	if len(hd.RootLevels[0].Children) != 1 {
		t.Fatalf("expected 1 nested child level, got %d", len(hd.RootLevels[0].Children))
	}
}

func TestGetHierarchy_NotFound(t *testing.T) {
	doc := &DefinitionsDocument{Hierarchies: map[string]HierarchyDefinition{}}
	_, err := doc.GetHierarchy("missing")
	if err == nil {
		t.Error("expected error for missing hierarchy")
	}
}

func TestListHierarchies(t *testing.T) {
	doc := &DefinitionsDocument{
		Hierarchies: map[string]HierarchyDefinition{
			"a": {}, "b": {}, "c": {},
		},
	}
	names := doc.ListHierarchies()
	if len(names) != 3 {
		t.Errorf("expected 3 hierarchies, got %d", len(names))
	}
}
