// Package hxconfig provides configuration structures and loading for the
// hierarchy engine: the engine's own runtime settings (source DSN, cache
// sizing, row limits, logging) and the separate hierarchy-definitions
// document that declares the parent-to-children mapping.
package hxconfig

// Config is the complete engine configuration.
type Config struct {
	Source      DatabaseConfig     `yaml:"source" mapstructure:"source"`
	Cache       CacheConfig        `yaml:"cache" mapstructure:"cache"`
	QueryLimits QueryLimitsConfig  `yaml:"query_limits" mapstructure:"query_limits"`
	Logging     LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Definitions DefinitionsConfig  `yaml:"definitions" mapstructure:"definitions"`
}

// DatabaseConfig describes the MySQL connection the query executor reads
// hierarchy data from (spec.md section 4.2, "ECSQL-like executor").
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_seconds" mapstructure:"conn_max_lifetime_seconds"`
}

// CacheConfig sizes the two-tier child-nodes LRU cache (spec.md section 4.8).
type CacheConfig struct {
	// VariationsPerParent bounds the second-tier LRU: how many
	// (filter, size-limit) variations the cache keeps per parent before
	// evicting the least-recently-used one.
	VariationsPerParent int `yaml:"variations_per_parent" mapstructure:"variations_per_parent"`
	// MaxParents bounds the number of distinct parent fingerprints kept.
	MaxParents int `yaml:"max_parents" mapstructure:"max_parents"`
}

// QueryLimitsConfig controls row-limit enforcement (spec.md section 4.3).
type QueryLimitsConfig struct {
	DefaultRowLimit int `yaml:"default_row_limit" mapstructure:"default_row_limit"`
	HardRowLimit    int `yaml:"hard_row_limit" mapstructure:"hard_row_limit"`
}

// LoggingConfig mirrors the teacher's logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefinitionsConfig points at the separate hierarchy-definitions document.
type DefinitionsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			ConnMaxLifetimeSec: 300,
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
			Output: "stdout",
		},
		Definitions: DefinitionsConfig{
			Path: "hierarchies.yaml",
		},
	}
}

// ApplyOverrides applies CLI flag overrides to the configuration. Only
// non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, defaultRowLimit int) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if defaultRowLimit > 0 {
		c.QueryLimits.DefaultRowLimit = defaultRowLimit
	}
}
