package aggregates

import (
	"context"
	"strings"

	"github.com/yungbote/forum-backend/internal/data/repos"
	types "github.com/yungbote/forum-backend/internal/domain"
	domainagg "github.com/yungbote/forum-backend/internal/domain/aggregates"
	"github.com/yungbote/forum-backend/internal/platform/dbctx"
)

const (
	msgTitleRequired  = "Title is required"
	msgParentNotFound = "Parent theme not found"
)

type HierarchyAggregateDeps struct {
	Base BaseDeps

	Topics    repos.TopicRepo
	Relations repos.TopicRelationRepo
}

type hierarchyAggregate struct {
	deps HierarchyAggregateDeps
}

func NewHierarchyAggregate(deps HierarchyAggregateDeps) domainagg.HierarchyAggregate {
	deps.Base = deps.Base.withDefaults()
	return &hierarchyAggregate{deps: deps}
}

func (a *hierarchyAggregate) Contract() domainagg.Contract {
	return domainagg.HierarchyAggregateContract
}

// AttachTopic validates the input, creates the topic with its self edge and,
// under a parent, one edge per ancestor of that parent. Validation runs
// inside the transaction but ahead of every write.
func (a *hierarchyAggregate) AttachTopic(ctx context.Context, in domainagg.AttachTopicInput) (domainagg.AttachTopicResult, error) {
	const op = "Forum.Hierarchy.AttachTopic"
	var out domainagg.AttachTopicResult
	if a.deps.Topics == nil || a.deps.Relations == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "hierarchy aggregate repos not configured", nil)
	}

	title := strings.TrimSpace(in.Title)
	var parentID *int64
	if in.ParentID != nil {
		p := *in.ParentID
		parentID = &p
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if title == "" {
			return domainagg.NewError(domainagg.CodeValidation, op, msgTitleRequired, nil)
		}

		var ancestors []*types.TopicRelation
		if parentID != nil {
			parent, err := a.deps.Topics.LockByID(dbc, *parentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return domainagg.NewError(domainagg.CodeNotFound, op, msgParentNotFound, nil)
			}
			ancestors, err = a.deps.Relations.GetByChildID(dbc, parent.ID)
			if err != nil {
				return err
			}
		}

		topic, err := a.deps.Topics.Create(dbc, &types.Topic{Title: title})
		if err != nil {
			return err
		}

		rows := []*types.TopicRelation{{ParentID: topic.ID, ChildID: topic.ID, Depth: 0}}
		if parentID != nil {
			rows = append(rows, deriveClosure(*parentID, topic.ID, ancestors)...)
		}
		if _, err := a.deps.Relations.CreateMany(dbc, rows); err != nil {
			return err
		}

		out = domainagg.AttachTopicResult{
			TopicID:   topic.ID,
			Title:     topic.Title,
			ParentID:  parentID,
			CreatedAt: topic.CreatedAt,
			UpdatedAt: topic.UpdatedAt,
			Edges:     make([]domainagg.ClosureEdge, 0, len(rows)),
		}
		for _, r := range rows {
			out.Edges = append(out.Edges, domainagg.ClosureEdge{
				AncestorID:   r.ParentID,
				DescendantID: r.ChildID,
				Depth:        r.Depth,
			})
		}
		return nil
	})
	if err != nil {
		return domainagg.AttachTopicResult{}, err
	}
	return out, nil
}
