package forum

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/forum-backend/internal/domain"
	"github.com/yungbote/forum-backend/internal/platform/dbctx"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

// TopicRelationRepo reads and appends closure rows. There is no update or
// delete: rows only ever appear as a side effect of topic creation.
type TopicRelationRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.TopicRelation) ([]*types.TopicRelation, error)

	// GetByChildID returns the ancestor set of childID (self row included), depth ascending.
	GetByChildID(dbc dbctx.Context, childID int64) ([]*types.TopicRelation, error)
	// GetByParentID returns the descendant set of parentID (self row included),
	// depth then child ascending. maxDepth <= 0 means unbounded.
	GetByParentID(dbc dbctx.Context, parentID int64, maxDepth int) ([]*types.TopicRelation, error)
	GetByParentIDAtDepth(dbc dbctx.Context, parentID int64, depth int) ([]*types.TopicRelation, error)
	GetDirectParent(dbc dbctx.Context, childID int64) (*types.TopicRelation, error)
	List(dbc dbctx.Context) ([]*types.TopicRelation, error)
}

type topicRelationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRelationRepo(db *gorm.DB, baseLog *logger.Logger) TopicRelationRepo {
	return &topicRelationRepo{db: db, log: baseLog.With("repo", "TopicRelationRepo")}
}

// CreateMany bulk-inserts rows as a single statement. A duplicate
// (parent_id, child_id) fails the whole statement.
func (r *topicRelationRepo) CreateMany(dbc dbctx.Context, rows []*types.TopicRelation) ([]*types.TopicRelation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.TopicRelation{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *topicRelationRepo) GetByChildID(dbc dbctx.Context, childID int64) ([]*types.TopicRelation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TopicRelation
	if childID <= 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("child_id = ?", childID).
		Order("depth ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRelationRepo) GetByParentID(dbc dbctx.Context, parentID int64, maxDepth int) ([]*types.TopicRelation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TopicRelation
	if parentID <= 0 {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).Where("parent_id = ?", parentID)
	if maxDepth > 0 {
		q = q.Where("depth <= ?", maxDepth)
	}
	if err := q.Order("depth ASC, child_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRelationRepo) GetByParentIDAtDepth(dbc dbctx.Context, parentID int64, depth int) ([]*types.TopicRelation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TopicRelation
	if parentID <= 0 || depth < 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("parent_id = ? AND depth = ?", parentID, depth).
		Order("child_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetDirectParent returns the depth-1 row for childID, or nil for a root.
func (r *topicRelationRepo) GetDirectParent(dbc dbctx.Context, childID int64) (*types.TopicRelation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if childID <= 0 {
		return nil, nil
	}
	var out []*types.TopicRelation
	if err := t.WithContext(dbc.Ctx).
		Where("child_id = ? AND depth = 1", childID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *topicRelationRepo) List(dbc dbctx.Context) ([]*types.TopicRelation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TopicRelation
	if err := t.WithContext(dbc.Ctx).
		Order("child_id ASC, depth ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
