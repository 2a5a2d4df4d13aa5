package hierarchy

import "github.com/dbsmedya/hierarchyengine/internal/hxtypes"

// InstanceGroup is one (className, instanceIds) bucket of a multi-class
// instance-key parent (spec.md section 4.1).
type InstanceGroup struct {
	ClassName string
	IDs       []string
}

// GroupInstanceKeysByClass partitions keys by class name, preserving the
// order classes first appear in keys (stable, deterministic grouping
// for deterministic cache fingerprints downstream).
func GroupInstanceKeysByClass(keys []hxtypes.InstanceKey) []InstanceGroup {
	index := make(map[string]int)
	var groups []InstanceGroup
	for _, k := range keys {
		i, ok := index[k.ClassName]
		if !ok {
			i = len(groups)
			index[k.ClassName] = i
			groups = append(groups, InstanceGroup{ClassName: k.ClassName})
		}
		groups[i].IDs = append(groups[i].IDs, k.ID)
	}
	return groups
}
