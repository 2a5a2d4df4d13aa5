package hxconfig

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the engine configuration for required fields and valid
// values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if err := c.validateDatabase("source", &c.Source); err != nil {
		errors = append(errors, err...)
	}
	if err := c.validateCache(); err != nil {
		errors = append(errors, err...)
	}
	if err := c.validateQueryLimits(); err != nil {
		errors = append(errors, err...)
	}
	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}
	if c.Definitions.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "definitions.path",
			Message: "path is required",
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{Field: prefix + ".host", Message: "host is required"})
	}
	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{Field: prefix + ".port", Message: "port must be between 1 and 65535"})
	}
	if db.User == "" {
		errors = append(errors, ValidationError{Field: prefix + ".user", Message: "user is required"})
	}
	if db.Database == "" {
		errors = append(errors, ValidationError{Field: prefix + ".database", Message: "database name is required"})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{Field: prefix + ".tls", Message: "tls must be 'disable', 'preferred', or 'required'"})
	}
	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{Field: prefix + ".max_connections", Message: "max_connections cannot be negative"})
	}
	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{Field: prefix + ".max_idle_connections", Message: "max_idle_connections cannot be negative"})
	}

	return errors
}

func (c *Config) validateCache() ValidationErrors {
	var errors ValidationErrors
	if c.Cache.VariationsPerParent <= 0 {
		errors = append(errors, ValidationError{Field: "cache.variations_per_parent", Message: "must be positive"})
	}
	if c.Cache.MaxParents <= 0 {
		errors = append(errors, ValidationError{Field: "cache.max_parents", Message: "must be positive"})
	}
	return errors
}

func (c *Config) validateQueryLimits() ValidationErrors {
	var errors ValidationErrors
	if c.QueryLimits.DefaultRowLimit <= 0 {
		errors = append(errors, ValidationError{Field: "query_limits.default_row_limit", Message: "must be positive"})
	}
	if c.QueryLimits.HardRowLimit < c.QueryLimits.DefaultRowLimit {
		errors = append(errors, ValidationError{Field: "query_limits.hard_row_limit", Message: "must be >= default_row_limit"})
	}
	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{Field: "logging.level", Message: "must be debug, info, warn, or error"})
	}
	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{Field: "logging.format", Message: "must be json or text"})
	}
	return errors
}

// Validate checks a definitions document for structural consistency: at
// least one hierarchy is defined, each hierarchy has at least one root
// level, and every level (recursively through its children) declares
// exactly one of generic or query, with the node ID or full class name
// that one requires. It does not check that levels are reachable or
// where onlyIfNotHandled fallbacks sit.
func (d *DefinitionsDocument) Validate() error {
	var errors ValidationErrors

	if len(d.Hierarchies) == 0 {
		errors = append(errors, ValidationError{Field: "hierarchies", Message: "at least one hierarchy must be defined"})
	}

	for name, hd := range d.Hierarchies {
		prefix := fmt.Sprintf("hierarchies.%s", name)
		if len(hd.RootLevels) == 0 {
			errors = append(errors, ValidationError{Field: prefix + ".root_levels", Message: "at least one root level must be defined"})
			continue
		}
		for i, lvl := range hd.RootLevels {
			errors = append(errors, validateLevel(fmt.Sprintf("%s.root_levels[%d]", prefix, i), &lvl)...)
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func validateLevel(prefix string, lvl *LevelDefinition) ValidationErrors {
	var errors ValidationErrors

	if lvl.Generic == nil && lvl.Query == nil {
		errors = append(errors, ValidationError{Field: prefix, Message: "must declare either generic or query"})
	}
	if lvl.Generic != nil && lvl.Query != nil {
		errors = append(errors, ValidationError{Field: prefix, Message: "must not declare both generic and query"})
	}
	if lvl.Query != nil && lvl.Query.FullClassName == "" {
		errors = append(errors, ValidationError{Field: prefix + ".query.full_class_name", Message: "is required"})
	}
	if lvl.Generic != nil && lvl.Generic.NodeID == "" {
		errors = append(errors, ValidationError{Field: prefix + ".generic.node_id", Message: "is required"})
	}

	for i, child := range lvl.Children {
		errors = append(errors, validateLevel(fmt.Sprintf("%s.children[%d]", prefix, i), &child)...)
	}

	return errors
}
