package querybuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

// CompiledFilter is the `{from, joins, where}` fragment a GenericInstanceFilter
// compiles to (spec.md section 4.2).
type CompiledFilter struct {
	From  string
	Joins []string
	Where string
	Args  []any
}

// FilterCompiler compiles GenericInstanceFilter values against a class
// metadata Inspector.
type FilterCompiler struct {
	inspector metadata.Inspector
}

// NewFilterCompiler creates a compiler backed by the given Inspector.
func NewFilterCompiler(inspector metadata.Inspector) *FilterCompiler {
	return &FilterCompiler{inspector: inspector}
}

// Compile compiles filter against the content class contentClassName,
// the class the enclosing instance-node query already selects from.
func (c *FilterCompiler) Compile(ctx context.Context, contentClassName string, filter GenericInstanceFilter) (*CompiledFilter, error) {
	from, ok, err := c.resolveFrom(ctx, contentClassName, filter.PropertyClassNames)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &CompiledFilter{From: contentClassName, Where: "FALSE"}, nil
	}

	joins, err := c.compileJoins(filter.RelatedInstances)
	if err != nil {
		return nil, err
	}

	where, args, err := c.compileRule(ctx, from, filter.Rule)
	if err != nil {
		return nil, err
	}

	if len(filter.FilteredClassNames) > 0 {
		classFilter, classArgs := compileClassFilter(from, filter.FilteredClassNames)
		if where == "" {
			where = classFilter
		} else {
			where = fmt.Sprintf("(%s) AND (%s)", where, classFilter)
		}
		args = append(args, classArgs...)
	}

	if where == "" {
		where = "TRUE"
	}

	return &CompiledFilter{From: from, Joins: joins, Where: where, Args: args}, nil
}

// resolveFrom finds the most-derived class of the intersection of the
// content class and the filter's property class list: contentClassName
// itself, provided it derives from every named property class. An empty
// intersection (spec.md section 4.2) signals the caller to emit `where
// FALSE` rather than error.
func (c *FilterCompiler) resolveFrom(ctx context.Context, contentClassName string, propertyClassNames []string) (string, bool, error) {
	if _, err := c.inspector.GetClass(ctx, contentClassName); err != nil {
		return "", false, &UnknownSchemaOrClassError{FullClassName: contentClassName}
	}

	for _, propClass := range propertyClassNames {
		if _, err := c.inspector.GetClass(ctx, propClass); err != nil {
			return "", false, &UnknownSchemaOrClassError{FullClassName: propClass}
		}
		derives, err := c.inspector.ClassDerivesFrom(ctx, contentClassName, propClass)
		if err != nil {
			return "", false, err
		}
		if !derives {
			return "", false, nil
		}
	}
	return contentClassName, true, nil
}

// compileJoins builds one join clause per relationship-traversal step,
// aliasing the relationship `rel_<i>_<relationship>_rel` and its target
// `rel_<i>_<target>_target` (spec.md section 4.2).
func (c *FilterCompiler) compileJoins(related []RelatedInstanceSpec) ([]string, error) {
	joins := make([]string, 0, len(related))
	for i, r := range related {
		if r.RelationshipClassName == "" {
			return nil, &UnsupportedFilterPropertyError{ClassName: r.TargetClassName, Reason: "empty relationship class name"}
		}
		relAlias := fmt.Sprintf("rel_%d_%s_rel", i, sanitizeAliasPart(r.RelationshipClassName))
		targetAlias := fmt.Sprintf("rel_%d_%s_target", i, sanitizeAliasPart(r.TargetClassName))

		direction := "FORWARD"
		if !r.IsForwardDirection {
			direction = "BACKWARD"
		}

		joins = append(joins, fmt.Sprintf(
			"JOIN %s %s USING (%s) JOIN %s %s ON %s.TargetECInstanceId = %s.ECInstanceId /* %s */",
			quoteIdentifier(r.RelationshipClassName), relAlias, quoteIdentifier("SourceECInstanceId"),
			quoteIdentifier(r.TargetClassName), targetAlias, relAlias, targetAlias, direction,
		))
	}
	return joins, nil
}

func sanitizeAliasPart(fullClassName string) string {
	return strings.ReplaceAll(strings.ReplaceAll(fullClassName, ".", "_"), "`", "")
}

// compileClassFilter emits `<alias>.ECClassId IS (?, ...)`, with the class
// names returned as the bound arguments.
func compileClassFilter(alias string, classNames []string) (string, []any) {
	placeholders := make([]string, len(classNames))
	args := make([]any, len(classNames))
	for i, name := range classNames {
		placeholders[i] = "?"
		args[i] = name
	}
	return fmt.Sprintf("%s.ECClassId IS (%s)", quoteIdentifier(alias), strings.Join(placeholders, ", ")), args
}

// compileRule recursively lowers a Rule tree into a WHERE fragment and its
// bound arguments.
func (c *FilterCompiler) compileRule(ctx context.Context, fromAlias string, rule Rule) (string, []any, error) {
	switch rule.Kind {
	case RuleAnd, RuleOr:
		if len(rule.Children) == 0 {
			return "", nil, nil
		}
		parts := make([]string, 0, len(rule.Children))
		var args []any
		for _, child := range rule.Children {
			frag, childArgs, err := c.compileRule(ctx, fromAlias, child)
			if err != nil {
				return "", nil, err
			}
			if frag == "" {
				continue
			}
			parts = append(parts, "("+frag+")")
			args = append(args, childArgs...)
		}
		joiner := " AND "
		if rule.Kind == RuleOr {
			joiner = " OR "
		}
		return strings.Join(parts, joiner), args, nil

	case RuleNot:
		frag, args, err := c.compileRule(ctx, fromAlias, rule.Children[0])
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + frag + ")", args, nil

	case RuleCompare:
		if rule.PropertyName == "" && rule.Operator == "" {
			// Zero-value Rule: no property comparison was supplied.
			return "", nil, nil
		}
		if err := c.checkPropertyKind(ctx, rule); err != nil {
			return "", nil, err
		}
		return c.compileCompare(fromAlias, rule)

	default:
		return "", nil, fmt.Errorf("unknown rule kind %d", rule.Kind)
	}
}

const floatEpsilon = 1e-9

// checkPropertyKind rejects a filter rule naming a struct property, an
// array property, or a property absent from both the named class and its
// base classes (spec.md section 4.2, "Struct/array/non-existent
// properties raise errors").
func (c *FilterCompiler) checkPropertyKind(ctx context.Context, rule Rule) error {
	if rule.PropertyClassName == "" {
		return nil
	}
	prop, err := c.inspector.GetProperty(ctx, rule.PropertyClassName, rule.PropertyName)
	if err != nil {
		return &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "property does not exist"}
	}
	if isStructOrArrayKind(prop.Type) {
		return &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "struct and array properties cannot be filtered"}
	}
	return nil
}

// isStructOrArrayKind reports whether a PropertyInfo.Type names a struct
// property ("struct") or an array of any kind (a "<type>[]" suffix).
func isStructOrArrayKind(propType string) bool {
	return propType == "struct" || strings.HasSuffix(propType, "[]")
}

func (c *FilterCompiler) compileCompare(fromAlias string, rule Rule) (string, []any, error) {
	col := fmt.Sprintf("%s.%s", quoteIdentifier(fromAlias), quoteIdentifier(rule.PropertyName))

	switch rule.PropertyType {
	case TypePoint2d:
		p, ok := rule.Value.(Point2d)
		if !ok {
			return "", nil, &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "expected Point2d value"}
		}
		frag := fmt.Sprintf("%s_X BETWEEN ? AND ? AND %s_Y BETWEEN ? AND ?", col, col)
		return frag, []any{p.X - floatEpsilon, p.X + floatEpsilon, p.Y - floatEpsilon, p.Y + floatEpsilon}, nil

	case TypePoint3d:
		p, ok := rule.Value.(Point3d)
		if !ok {
			return "", nil, &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "expected Point3d value"}
		}
		frag := fmt.Sprintf("%s_X BETWEEN ? AND ? AND %s_Y BETWEEN ? AND ? AND %s_Z BETWEEN ? AND ?", col, col, col)
		return frag, []any{
			p.X - floatEpsilon, p.X + floatEpsilon,
			p.Y - floatEpsilon, p.Y + floatEpsilon,
			p.Z - floatEpsilon, p.Z + floatEpsilon,
		}, nil

	case TypeFloat:
		if rule.Operator != OpEqual {
			return c.compileScalarOperator(col, rule)
		}
		f, ok := toFloat(rule.Value)
		if !ok {
			return "", nil, &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "expected numeric value"}
		}
		return fmt.Sprintf("%s BETWEEN ? AND ?", col), []any{f - floatEpsilon, f + floatEpsilon}, nil

	case TypeDateTime:
		return c.compileDateTime(col, rule)

	default:
		return c.compileScalarOperator(col, rule)
	}
}

func (c *FilterCompiler) compileScalarOperator(col string, rule Rule) (string, []any, error) {
	switch rule.Operator {
	case OpEqual:
		return col + " = ?", []any{rule.Value}, nil
	case OpNotEqual:
		return col + " <> ?", []any{rule.Value}, nil
	case OpLess:
		return col + " < ?", []any{rule.Value}, nil
	case OpLessOrEqual:
		return col + " <= ?", []any{rule.Value}, nil
	case OpGreater:
		return col + " > ?", []any{rule.Value}, nil
	case OpGreaterOrEqual:
		return col + " >= ?", []any{rule.Value}, nil
	case OpIsNull:
		return col + " IS NULL", nil, nil
	case OpIsNotNull:
		return col + " IS NOT NULL", nil, nil
	case OpLike:
		s, ok := rule.Value.(string)
		if !ok {
			return "", nil, &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "like requires a string value"}
		}
		return col + " LIKE ? ESCAPE '\\\\'", []any{s}, nil
	case OpIn:
		if len(rule.Values) == 0 {
			return "FALSE", nil, nil
		}
		placeholders := make([]string, len(rule.Values))
		for i := range rule.Values {
			placeholders[i] = "?"
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), rule.Values, nil
	default:
		return "", nil, &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "unsupported operator " + string(rule.Operator)}
	}
}

// compileDateTime compares via Julian day, computed from the ISO
// timestamp (spec.md section 4.2, "DateTime is compared by Julian day
// from an ISO timestamp").
func (c *FilterCompiler) compileDateTime(col string, rule Rule) (string, []any, error) {
	s, ok := rule.Value.(string)
	if !ok {
		return "", nil, &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "datetime comparisons require an ISO-8601 string"}
	}
	julianExpr := fmt.Sprintf("(TO_SECONDS(%s) / 86400.0)", col)
	julianValue := "(TO_SECONDS(?) / 86400.0)"

	var op string
	switch rule.Operator {
	case OpEqual:
		op = "="
	case OpNotEqual:
		op = "<>"
	case OpLess:
		op = "<"
	case OpLessOrEqual:
		op = "<="
	case OpGreater:
		op = ">"
	case OpGreaterOrEqual:
		op = ">="
	default:
		return "", nil, &UnsupportedFilterPropertyError{ClassName: rule.PropertyClassName, PropertyName: rule.PropertyName, Reason: "unsupported datetime operator " + string(rule.Operator)}
	}

	return fmt.Sprintf("%s %s %s", julianExpr, op, julianValue), []any{s}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
