package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
)

// ParseHook is the optional per-definition parseNode(row) -> node hook
// (spec.md section 4.1).
type ParseHook func(row queryexec.Row, node hxtypes.HierarchyNode) (hxtypes.HierarchyNode, error)

// ParseSource streams rows from stream, decoding the fixed 11-column
// contract (spec.md section 4.2) into HierarchyNode values and sending
// them on the returned channel, which is closed when the stream is
// exhausted, the context is cancelled, or the row limit is hit.
//
// A RowsLimitExceededError surfaces as a single ResultSetTooLargeNode
// (spec.md section 4.9) rather than propagating as a fatal error: the
// channel still closes cleanly afterward. Any other stream error is
// reported through errOut exactly once before the channel closes.
func ParseSource(
	ctx context.Context,
	stream queryexec.RowStream,
	fullClassName string,
	parentKey *hxtypes.NodeKey,
	hook ParseHook,
	yielder Yielder,
) (<-chan hxtypes.HierarchyNode, <-chan error) {
	if yielder == nil {
		yielder = noopYielder{}
	}
	out := make(chan hxtypes.HierarchyNode)
	errOut := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errOut)
		defer stream.Close()

		count := 0
		for stream.Next(ctx) {
			row, err := stream.Scan()
			if err != nil {
				errOut <- fmt.Errorf("scanning instance node row: %w", err)
				return
			}

			node, err := parseRow(row, fullClassName)
			if err != nil {
				errOut <- err
				return
			}
			if parentKey != nil {
				node.ParentKeys = append(append([]hxtypes.NodeKey{}, node.ParentKeys...), *parentKey)
			}
			if hook != nil {
				node, err = hook(row, node)
				if err != nil {
					errOut <- err
					return
				}
			}

			select {
			case out <- node:
			case <-ctx.Done():
				return
			}

			count++
			if count%100 == 0 {
				yielder.Yield(ctx)
			}
		}

		if err := stream.Err(); err != nil {
			if limitErr, ok := err.(*RowsLimitExceededError); ok {
				select {
				case out <- ResultSetTooLargeNode(limitErr.Limit):
				case <-ctx.Done():
				}
				return
			}
			errOut <- err
		}
	}()

	return out, errOut
}

// parseRow decodes one fixed-column row into an instance HierarchyNode.
func parseRow(row queryexec.Row, fullClassName string) (hxtypes.HierarchyNode, error) {
	id, err := stringColumn(row, "ECInstanceId")
	if err != nil {
		return hxtypes.HierarchyNode{}, err
	}
	label, _ := row["DisplayLabel"].(string)

	node := hxtypes.HierarchyNode{
		Key:   hxtypes.InstancesKey(hxtypes.InstanceKey{ClassName: fullClassName, ID: id}),
		Label: label,
	}

	node.Children = hxtypes.ChildrenUnknown
	if v, ok := row["HasChildren"].(bool); ok {
		if v {
			node.Children = hxtypes.ChildrenYes
		} else {
			node.Children = hxtypes.ChildrenNo
		}
	}

	if v, ok := row["HideIfNoChildren"].(bool); ok {
		node.Processing.HideIfNoChildren = v
	}
	if v, ok := row["HideNodeInHierarchy"].(bool); ok {
		node.Processing.HideInHierarchy = v
	}
	if v, ok := row["MergeByLabelId"].(string); ok {
		node.Processing.MergeByLabelID = v
	}
	if v, ok := row["AutoExpand"].(bool); ok {
		node.AutoExpand = &v
	}

	if raw, ok := row["Grouping"]; ok && raw != nil {
		grouping, err := decodeGrouping(raw)
		if err != nil {
			return hxtypes.HierarchyNode{}, fmt.Errorf("decoding Grouping column for %s: %w", fullClassName, err)
		}
		node.Processing.Grouping = grouping
	}

	if raw, ok := row["ExtendedData"]; ok && raw != nil {
		data, err := decodeJSONObject(raw)
		if err != nil {
			return hxtypes.HierarchyNode{}, fmt.Errorf("decoding ExtendedData column for %s: %w", fullClassName, err)
		}
		node.ExtendedData = data
	}

	if v, ok := row["SupportsFiltering"].(bool); ok {
		node.Filtering.IsFilterTarget = v
	}

	return node, nil
}

func stringColumn(row queryexec.Row, name string) (string, error) {
	v, ok := row[name]
	if !ok || v == nil {
		return "", fmt.Errorf("row is missing required column %q", name)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return fmt.Sprintf("%v", s), nil
	}
}

func decodeJSONObject(raw any) (map[string]any, error) {
	var b []byte
	switch v := raw.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return nil, fmt.Errorf("expected string/[]byte JSON column, got %T", raw)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
