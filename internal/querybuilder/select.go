package querybuilder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
)

// FilteringContext carries the identifier-path state the select builder
// needs to join the FilteringInfo CTE (spec.md section 4.6 / wire
// surface).
type FilteringContext struct {
	// Active is false when no identifier-path filter applies to this
	// level; the CTE join is skipped entirely.
	Active bool
	// HasFilterTargetAncestor selects LEFT JOIN (an ancestor already
	// matched a path, so unmatched descendants still stream through)
	// versus INNER JOIN (only rows that continue to match a path survive).
	HasFilterTargetAncestor bool
	// TargetIDs are the instance IDs that are filter targets or lie on an
	// active identifier path at this level.
	TargetIDs []string
}

// Factory builds instance-node SELECT queries from a hierarchy level
// definition, generalizing graph.Builder's recursive construction from a
// declarative relation tree into one query per level (spec.md section 4.2).
type Factory struct {
	inspector metadata.Inspector
	compiler  *FilterCompiler
}

// NewFactory creates a Factory backed by the given class metadata
// Inspector.
func NewFactory(inspector metadata.Inspector) *Factory {
	return &Factory{inspector: inspector, compiler: NewFilterCompiler(inspector)}
}

// BuildInstanceNodesQuery builds the SELECT for one level's QuerySpec,
// applying an optional GenericInstanceFilter and FilteringContext.
func (f *Factory) BuildInstanceNodesQuery(
	ctx context.Context,
	spec *hxconfig.QuerySpec,
	processing hxconfig.ProcessingSpec,
	filter *GenericInstanceFilter,
	filtering FilteringContext,
) (queryexec.Query, error) {
	if spec == nil || spec.FullClassName == "" {
		return queryexec.Query{}, fmt.Errorf("query spec must declare full_class_name")
	}
	if _, err := f.inspector.GetClass(ctx, spec.FullClassName); err != nil {
		return queryexec.Query{}, &UnknownSchemaOrClassError{FullClassName: spec.FullClassName}
	}

	groupingJSON, err := encodeGrouping(processing.Grouping)
	if err != nil {
		return queryexec.Query{}, fmt.Errorf("failed to encode grouping selector: %w", err)
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT\n")
	sb.WriteString(fmt.Sprintf("  %s AS FullClassName,\n", quoteLiteral(spec.FullClassName)))
	sb.WriteString("  q.ECInstanceId AS ECInstanceId,\n")
	sb.WriteString("  q.DisplayLabel AS DisplayLabel,\n")
	sb.WriteString("  CAST(NULL AS BOOLEAN) AS HasChildren,\n")
	sb.WriteString(fmt.Sprintf("  CAST(%t AS BOOLEAN) AS HideIfNoChildren,\n", processing.HideIfNoChildren))
	sb.WriteString(fmt.Sprintf("  CAST(%t AS BOOLEAN) AS HideNodeInHierarchy,\n", processing.HideInHierarchy))
	sb.WriteString(fmt.Sprintf("  %s AS Grouping,\n", quoteLiteral(groupingJSON)))
	sb.WriteString(fmt.Sprintf("  %s AS MergeByLabelId,\n", quoteNullableLiteral(processing.MergeByLabelID)))
	sb.WriteString("  CAST(NULL AS JSON) AS ExtendedData,\n")
	sb.WriteString("  CAST(NULL AS BOOLEAN) AS AutoExpand,\n")
	sb.WriteString(fmt.Sprintf("  CAST(%t AS BOOLEAN) AS SupportsFiltering\n", filtering.Active))

	sb.WriteString(fmt.Sprintf("FROM %s q\n", quoteIdentifier(spec.FullClassName)))

	if filtering.Active {
		joinKind := "INNER JOIN"
		if filtering.HasFilterTargetAncestor {
			joinKind = "LEFT JOIN"
		}
		sb.WriteString(fmt.Sprintf("%s FilteringInfo fi ON fi.ECInstanceId = q.ECInstanceId\n", joinKind))
	}

	whereClauses := []string{"1=1"}
	if spec.Where != "" {
		whereClauses = append(whereClauses, "("+spec.Where+")")
	}

	if filter != nil {
		compiled, err := f.compiler.Compile(ctx, spec.FullClassName, *filter)
		if err != nil {
			return queryexec.Query{}, err
		}
		for _, join := range compiled.Joins {
			sb.WriteString(join + "\n")
		}
		whereClauses = append(whereClauses, "("+compiled.Where+")")
		args = append(args, compiled.Args...)
	}

	if filtering.Active && len(filtering.TargetIDs) > 0 {
		placeholders := make([]string, len(filtering.TargetIDs))
		for i, id := range filtering.TargetIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		whereClauses = append(whereClauses, fmt.Sprintf("q.ECInstanceId IN (%s)", strings.Join(placeholders, ", ")))
	}

	sb.WriteString("WHERE " + strings.Join(whereClauses, " AND ") + "\n")

	if spec.OrderBy != "" {
		sb.WriteString("ORDER BY " + spec.OrderBy + "\n")
	} else {
		sb.WriteString("ORDER BY q.DisplayLabel ASC\n")
	}

	sql := sb.String()
	if filtering.Active {
		sql = buildFilteringInfoCTE() + sql
	}

	return queryexec.Query{SQL: sql, Args: args}, nil
}

// buildFilteringInfoCTE declares the WITH clause exposing FilteringInfo's
// fixed columns (spec.md section 4.2 wire surface). The CTE body selects
// everything from a relation named FilteringInfoSource, which the factory
// does not create or populate; the factory only owns the column contract.
func buildFilteringInfoCTE() string {
	return fmt.Sprintf("WITH FilteringInfo(%s) AS (SELECT * FROM FilteringInfoSource)\n", strings.Join(FilteringInfoColumns, ", "))
}

func encodeGrouping(g *hxconfig.GroupingSpec) (string, error) {
	if g == nil {
		return "{}", nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteNullableLiteral(s string) string {
	if s == "" {
		return "NULL"
	}
	return quoteLiteral(s)
}
