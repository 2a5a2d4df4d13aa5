package pipeline

import "github.com/dbsmedya/hierarchyengine/internal/hxtypes"

// Info node source tags (spec.md section 4.9): a row-limit breach or an
// unknown-class lookup failure surfaces as a generic node carrying one
// of these IDs in its Key.Source, rather than as a fatal error, so the
// rest of the hierarchy stays consumable.
const (
	infoSourceResultSetTooLarge = "$info.ResultSetTooLarge"
	infoSourceUnknownClass      = "$info.Unknown"
)

// ResultSetTooLargeNode builds the info node emitted when a level's row
// count would exceed its configured limit (spec.md sections 4.3, 4.9).
func ResultSetTooLargeNode(limit int) hxtypes.HierarchyNode {
	return hxtypes.HierarchyNode{
		Key:   hxtypes.GenericKey(infoSourceResultSetTooLarge, infoSourceResultSetTooLarge),
		Label: "Result set too large",
		ExtendedData: map[string]any{
			"type":    "ResultSetTooLarge",
			"message": (&RowsLimitExceededError{Limit: limit}).Error(),
			"limit":   limit,
		},
	}
}

// UnknownClassNode builds the info node emitted when a definition
// references an unknown schema/class: the failure is scoped to that one
// hierarchy level, not the whole tree (spec.md section 4.9).
func UnknownClassNode(err *UnknownSchemaOrClassError) hxtypes.HierarchyNode {
	return hxtypes.HierarchyNode{
		Key:   hxtypes.GenericKey(infoSourceUnknownClass, infoSourceUnknownClass),
		Label: "Unknown",
		ExtendedData: map[string]any{
			"type":    "Unknown",
			"message": err.Error(),
		},
	}
}

// IsInfoNode reports whether node is a synthetic info node produced by
// ResultSetTooLargeNode or UnknownClassNode, as opposed to a real
// generic/instance node from a definition.
func IsInfoNode(node hxtypes.HierarchyNode) bool {
	return node.Key.Kind == hxtypes.KindGeneric &&
		(node.Key.Source == infoSourceResultSetTooLarge || node.Key.Source == infoSourceUnknownClass)
}
