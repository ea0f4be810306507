package forum

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/forum-backend/internal/domain"
	"github.com/yungbote/forum-backend/internal/platform/dbctx"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

type TopicRepo interface {
	Create(dbc dbctx.Context, topic *types.Topic) (*types.Topic, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Topic, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Topic, error)
	LockByID(dbc dbctx.Context, id int64) (*types.Topic, error)
	List(dbc dbctx.Context) ([]*types.Topic, error)
	Count(dbc dbctx.Context) (int64, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) Create(dbc dbctx.Context, topic *types.Topic) (*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if topic == nil {
		return nil, fmt.Errorf("missing topic")
	}
	now := time.Now().UTC()
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = now
	}
	if topic.UpdatedAt.IsZero() {
		topic.UpdatedAt = topic.CreatedAt
	}
	if err := t.WithContext(dbc.Ctx).Create(topic).Error; err != nil {
		return nil, err
	}
	return topic, nil
}

func (r *topicRepo) GetByID(dbc dbctx.Context, id int64) (*types.Topic, error) {
	if id <= 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *topicRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LockByID reads a topic inside dbc.Tx holding a shared row lock on postgres,
// so the row cannot disappear under a concurrent writer before commit.
func (r *topicRepo) LockByID(dbc dbctx.Context, id int64) (*types.Topic, error) {
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	if id <= 0 {
		return nil, nil
	}
	q := dbc.Tx.WithContext(dbc.Ctx)
	if strings.EqualFold(q.Dialector.Name(), "postgres") {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	var out types.Topic
	if err := q.Where("id = ?", id).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *topicRepo) List(dbc dbctx.Context) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if err := t.WithContext(dbc.Ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Topic{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
