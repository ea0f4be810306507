package aggregates

import (
	"sort"

	types "github.com/yungbote/forum-backend/internal/domain"
)

// closureKey identifies a closure row independent of its depth.
type closureKey struct {
	ancestorID int64
	childID    int64
}

// deriveClosure computes the closure rows that attach childID under parentID.
// parentAncestors are the rows whose child is parentID (the parent's self row
// included). Each yields (ancestor, childID, depth+1); the direct edge
// (parentID, childID, 1) is guaranteed even when the parent's self row is
// missing. One row per (ancestor, child) pair survives, nearest ancestor first.
func deriveClosure(parentID, childID int64, parentAncestors []*types.TopicRelation) []*types.TopicRelation {
	seen := make(map[closureKey]struct{}, len(parentAncestors)+1)
	out := make([]*types.TopicRelation, 0, len(parentAncestors)+1)

	add := func(ancestorID int64, depth int) {
		k := closureKey{ancestorID: ancestorID, childID: childID}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, &types.TopicRelation{ParentID: ancestorID, ChildID: childID, Depth: depth})
	}

	for _, rel := range parentAncestors {
		if rel == nil || rel.ChildID != parentID {
			continue
		}
		add(rel.ParentID, rel.Depth+1)
	}
	add(parentID, 1)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}
