package aggregates

import (
	"context"
	"time"
)

var HierarchyAggregateContract = Contract{
	Name:             "Forum.HierarchyAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns atomic topic creation together with every closure row implied by its parent.",
}

// HierarchyAggregate owns the closure-table invariants of the topic tree:
// a self edge per topic, one edge per (ancestor, descendant) pair at the
// right depth, no duplicates.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeTimeout, CodeInternal.
type HierarchyAggregate interface {
	Aggregate

	// AttachTopic creates a topic and, when ParentID is set, every closure
	// edge from the parent's ancestors to it. All or nothing.
	AttachTopic(ctx context.Context, in AttachTopicInput) (AttachTopicResult, error)
}

type AttachTopicInput struct {
	Title string
	// ParentID is optional; nil makes the topic a root.
	ParentID *int64
}

type AttachTopicResult struct {
	TopicID   int64
	Title     string
	ParentID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
	// Edges are the closure rows written for the new topic, self edge first.
	Edges []ClosureEdge
}

// ClosureEdge is the persistence-free view of one closure row.
type ClosureEdge struct {
	AncestorID   int64
	DescendantID int64
	Depth        int
}

// AncestorIDs returns every proper ancestor recorded in the result, nearest first.
func (r AttachTopicResult) AncestorIDs() []int64 {
	out := make([]int64, 0, len(r.Edges))
	for _, e := range r.Edges {
		if e.Depth == 0 {
			continue
		}
		out = append(out, e.AncestorID)
	}
	return out
}
