package hxconfig

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.Port != 3306 {
		t.Errorf("expected source port 3306, got %d", cfg.Source.Port)
	}
	if cfg.Source.TLS != "preferred" {
		t.Errorf("expected source TLS 'preferred', got %s", cfg.Source.TLS)
	}
	if cfg.Cache.VariationsPerParent != 8 {
		t.Errorf("expected variations_per_parent 8, got %d", cfg.Cache.VariationsPerParent)
	}
	if cfg.QueryLimits.DefaultRowLimit != 1000 {
		t.Errorf("expected default_row_limit 1000, got %d", cfg.QueryLimits.DefaultRowLimit)
	}
	if cfg.QueryLimits.HardRowLimit != 10000 {
		t.Errorf("expected hard_row_limit 10000, got %d", cfg.QueryLimits.HardRowLimit)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Definitions.Path != "hierarchies.yaml" {
		t.Errorf("expected default definitions path, got %s", cfg.Definitions.Path)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides("debug", "text", 5000)

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level overridden to 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected logging format overridden to 'text', got %s", cfg.Logging.Format)
	}
	if cfg.QueryLimits.DefaultRowLimit != 5000 {
		t.Errorf("expected default_row_limit overridden to 5000, got %d", cfg.QueryLimits.DefaultRowLimit)
	}
}

func TestApplyOverrides_ZeroValuesIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides("", "", 0)

	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level unchanged, got %s", cfg.Logging.Level)
	}
	if cfg.QueryLimits.DefaultRowLimit != 1000 {
		t.Errorf("expected default_row_limit unchanged, got %d", cfg.QueryLimits.DefaultRowLimit)
	}
}
