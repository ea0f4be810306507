package aggregates

import (
	"testing"

	types "github.com/yungbote/forum-backend/internal/domain"
)

func TestDeriveClosure_RootParent(t *testing.T) {
	parentRows := []*types.TopicRelation{{ParentID: 1, ChildID: 1, Depth: 0}}

	got := deriveClosure(1, 2, parentRows)
	if len(got) != 1 {
		t.Fatalf("expected one derived row, got %d", len(got))
	}
	if got[0].ParentID != 1 || got[0].ChildID != 2 || got[0].Depth != 1 {
		t.Fatalf("unexpected direct edge: %+v", got[0])
	}
}

func TestDeriveClosure_Chain(t *testing.T) {
	// parent 3 sits under 2 under 1.
	parentRows := []*types.TopicRelation{
		{ParentID: 1, ChildID: 3, Depth: 2},
		{ParentID: 3, ChildID: 3, Depth: 0},
		{ParentID: 2, ChildID: 3, Depth: 1},
	}

	got := deriveClosure(3, 4, parentRows)
	want := []struct {
		ancestor int64
		depth    int
	}{{3, 1}, {2, 2}, {1, 3}}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].ParentID != w.ancestor || got[i].ChildID != 4 || got[i].Depth != w.depth {
			t.Fatalf("row %d: want (%d,4,%d) got (%d,%d,%d)", i, w.ancestor, w.depth, got[i].ParentID, got[i].ChildID, got[i].Depth)
		}
	}
}

func TestDeriveClosure_DirectEdgeWithoutParentSelfRow(t *testing.T) {
	parentRows := []*types.TopicRelation{{ParentID: 1, ChildID: 2, Depth: 1}}

	got := deriveClosure(2, 5, parentRows)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ParentID != 2 || got[0].Depth != 1 {
		t.Fatalf("direct edge missing or misplaced: %+v", got[0])
	}
	if got[1].ParentID != 1 || got[1].Depth != 2 {
		t.Fatalf("grandparent edge wrong: %+v", got[1])
	}
}

func TestDeriveClosure_DropsDuplicatesAndForeignRows(t *testing.T) {
	parentRows := []*types.TopicRelation{
		nil,
		{ParentID: 2, ChildID: 2, Depth: 0},
		{ParentID: 2, ChildID: 2, Depth: 0},
		{ParentID: 1, ChildID: 2, Depth: 1},
		{ParentID: 7, ChildID: 9, Depth: 1},
	}

	got := deriveClosure(2, 3, parentRows)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(got), got)
	}
	seen := map[int64]bool{}
	for _, r := range got {
		if r.ChildID != 3 {
			t.Fatalf("row for wrong child: %+v", r)
		}
		if seen[r.ParentID] {
			t.Fatalf("duplicate ancestor %d", r.ParentID)
		}
		seen[r.ParentID] = true
		if r.ParentID == 7 {
			t.Fatalf("foreign row leaked into closure")
		}
	}
}
