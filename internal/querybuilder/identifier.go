package querybuilder

import (
	"regexp"
	"strings"
)

// quoteIdentifier quotes a MySQL identifier (table/column/alias) with
// backticks, escaping any existing backtick by doubling it.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// validIdentifierRegex matches names made only of alphanumeric characters
// and underscores.
var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// isValidIdentifier reports whether name is safe to splice into generated
// SQL without quoting. The query factory does not call it: join aliases
// go through sanitizeAliasPart and identifiers through quoteIdentifier.
func isValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// InvalidIdentifierError describes a class or property name that cannot
// be safely used to build SQL. No function in this package returns it.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}

// splitClassName splits "Schema.Class" into its schema and class parts.
func splitClassName(fullClassName string) (schema, class string, ok bool) {
	idx := strings.IndexByte(fullClassName, '.')
	if idx < 0 {
		return "", "", false
	}
	return fullClassName[:idx], fullClassName[idx+1:], true
}
