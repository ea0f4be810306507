package services

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/forum-backend/internal/data/repos"
	types "github.com/yungbote/forum-backend/internal/domain"
	domainagg "github.com/yungbote/forum-backend/internal/domain/aggregates"
	"github.com/yungbote/forum-backend/internal/observability"
	"github.com/yungbote/forum-backend/internal/platform/cache"
	"github.com/yungbote/forum-backend/internal/platform/dbctx"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

const msgTopicNotFound = "Theme not found"

const (
	cacheKindAncestors   = "ancestors"
	cacheKindDescendants = "descendants"
	cacheKindChildren    = "children"
)

// CreatedTopic is what a successful create reports back.
type CreatedTopic struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ParentID  *int64    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TopicView is a topic together with its declared parent.
type TopicView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ParentID  *int64    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RelatedTopic is a topic seen from another topic at the given depth.
type RelatedTopic struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Depth     int       `json:"depth"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TopicService interface {
	CreateTopic(ctx context.Context, title string, parentID *int64) (*CreatedTopic, error)
	ListTopics(ctx context.Context) ([]*types.Topic, error)
	GetTopic(ctx context.Context, id int64) (*TopicView, error)
	// ListAncestors returns proper ancestors, nearest first.
	ListAncestors(ctx context.Context, id int64) ([]RelatedTopic, error)
	// ListDescendants returns proper descendants by depth then id. maxDepth <= 0 is unbounded.
	ListDescendants(ctx context.Context, id int64, maxDepth int) ([]RelatedTopic, error)
	ListChildren(ctx context.Context, id int64) ([]RelatedTopic, error)
}

type topicService struct {
	db        *gorm.DB
	log       *logger.Logger
	topics    repos.TopicRepo
	relations repos.TopicRelationRepo
	hierarchy domainagg.HierarchyAggregate
	cache     cache.Cache
	cacheTTL  time.Duration
	metrics   *observability.Metrics
	fills     singleflight.Group
	// invalidations bumps on every create; a fill that saw it move skips its write.
	invalidations atomic.Uint64
}

func NewTopicService(
	db *gorm.DB,
	log *logger.Logger,
	topics repos.TopicRepo,
	relations repos.TopicRelationRepo,
	hierarchy domainagg.HierarchyAggregate,
	c cache.Cache,
	cacheTTL time.Duration,
	metrics *observability.Metrics,
) TopicService {
	if c == nil {
		c = cache.NewNoop()
	}
	return &topicService{
		db:        db,
		log:       log.With("service", "TopicService"),
		topics:    topics,
		relations: relations,
		hierarchy: hierarchy,
		cache:     c,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
	}
}

func (s *topicService) CreateTopic(ctx context.Context, title string, parentID *int64) (*CreatedTopic, error) {
	res, err := s.hierarchy.AttachTopic(ctx, domainagg.AttachTopicInput{Title: title, ParentID: parentID})
	if err != nil {
		return nil, err
	}
	s.invalidateListings(context.WithoutCancel(ctx), res.AncestorIDs())
	return &CreatedTopic{
		ID:        res.TopicID,
		Title:     res.Title,
		ParentID:  res.ParentID,
		CreatedAt: res.CreatedAt,
	}, nil
}

func (s *topicService) ListTopics(ctx context.Context) ([]*types.Topic, error) {
	out, err := s.topics.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return out, nil
}

func (s *topicService) GetTopic(ctx context.Context, id int64) (*TopicView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	topic, err := s.mustGet(dbc, "Forum.Topic.Get", id)
	if err != nil {
		return nil, err
	}
	parent, err := s.relations.GetDirectParent(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load parent of %d: %w", id, err)
	}
	view := &TopicView{
		ID:        topic.ID,
		Title:     topic.Title,
		CreatedAt: topic.CreatedAt,
		UpdatedAt: topic.UpdatedAt,
	}
	if parent != nil {
		pid := parent.ParentID
		view.ParentID = &pid
	}
	return view, nil
}

func (s *topicService) ListAncestors(ctx context.Context, id int64) ([]RelatedTopic, error) {
	key := "forum:ancestors:" + strconv.FormatInt(id, 10)
	return s.cached(ctx, cacheKindAncestors, key, func(dbc dbctx.Context) ([]RelatedTopic, error) {
		if _, err := s.mustGet(dbc, "Forum.Topic.ListAncestors", id); err != nil {
			return nil, err
		}
		rows, err := s.relations.GetByChildID(dbc, id)
		if err != nil {
			return nil, fmt.Errorf("load ancestors of %d: %w", id, err)
		}
		return s.resolve(dbc, rows, func(r *types.TopicRelation) int64 { return r.ParentID })
	})
}

func (s *topicService) ListDescendants(ctx context.Context, id int64, maxDepth int) ([]RelatedTopic, error) {
	if maxDepth < 0 {
		maxDepth = 0
	}
	key := fmt.Sprintf("forum:descendants:%d:%d", id, maxDepth)
	return s.cached(ctx, cacheKindDescendants, key, func(dbc dbctx.Context) ([]RelatedTopic, error) {
		if _, err := s.mustGet(dbc, "Forum.Topic.ListDescendants", id); err != nil {
			return nil, err
		}
		rows, err := s.relations.GetByParentID(dbc, id, maxDepth)
		if err != nil {
			return nil, fmt.Errorf("load descendants of %d: %w", id, err)
		}
		return s.resolve(dbc, rows, func(r *types.TopicRelation) int64 { return r.ChildID })
	})
}

func (s *topicService) ListChildren(ctx context.Context, id int64) ([]RelatedTopic, error) {
	key := "forum:children:" + strconv.FormatInt(id, 10)
	return s.cached(ctx, cacheKindChildren, key, func(dbc dbctx.Context) ([]RelatedTopic, error) {
		if _, err := s.mustGet(dbc, "Forum.Topic.ListChildren", id); err != nil {
			return nil, err
		}
		rows, err := s.relations.GetByParentIDAtDepth(dbc, id, 1)
		if err != nil {
			return nil, fmt.Errorf("load children of %d: %w", id, err)
		}
		return s.resolve(dbc, rows, func(r *types.TopicRelation) int64 { return r.ChildID })
	})
}

func (s *topicService) mustGet(dbc dbctx.Context, op string, id int64) (*types.Topic, error) {
	topic, err := s.topics.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load topic %d: %w", id, err)
	}
	if topic == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, msgTopicNotFound, nil)
	}
	return topic, nil
}

// resolve joins closure rows to their topics, keeping row order and dropping
// self rows.
func (s *topicService) resolve(dbc dbctx.Context, rows []*types.TopicRelation, other func(*types.TopicRelation) int64) ([]RelatedTopic, error) {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		if r.IsSelf() {
			continue
		}
		ids = append(ids, other(r))
	}
	out := make([]RelatedTopic, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	topics, err := s.topics.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load related topics: %w", err)
	}
	byID := make(map[int64]*types.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}
	for _, r := range rows {
		if r.IsSelf() {
			continue
		}
		t := byID[other(r)]
		if t == nil {
			s.log.Warn("closure row points at missing topic", "parent_id", r.ParentID, "child_id", r.ChildID)
			continue
		}
		out = append(out, RelatedTopic{
			ID:        t.ID,
			Title:     t.Title,
			Depth:     r.Depth,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}
	return out, nil
}

// cached serves key from the cache, filling it from load on a miss. Cache
// errors are logged and never fail the read.
func (s *topicService) cached(ctx context.Context, kind, key string, load func(dbc dbctx.Context) ([]RelatedTopic, error)) ([]RelatedTopic, error) {
	var hit []RelatedTopic
	found, err := s.cache.Get(ctx, key, &hit)
	switch {
	case err != nil:
		s.metrics.IncCache(kind, "error")
		s.log.Warn("cache read failed", "key", key, "error", err)
	case found:
		s.metrics.IncCache(kind, "hit")
		return hit, nil
	default:
		s.metrics.IncCache(kind, "miss")
	}

	v, err, _ := s.fills.Do(key, func() (interface{}, error) {
		epoch := s.invalidations.Load()
		out, err := load(dbctx.Context{Ctx: ctx})
		if err != nil {
			return nil, err
		}
		if s.invalidations.Load() != epoch {
			s.metrics.IncCache(kind, "stale_fill")
			return out, nil
		}
		if err := s.cache.Set(ctx, key, out, s.cacheTTL); err != nil {
			s.metrics.IncCache(kind, "error")
			s.log.Warn("cache write failed", "key", key, "error", err)
			return out, nil
		}
		if s.invalidations.Load() != epoch {
			// an invalidation ran between the check and the write
			if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
				s.log.Warn("cache invalidate failed", "key", key, "error", err)
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]RelatedTopic), nil
}

// invalidateListings drops cached descendant and children listings of every
// ancestor of a newly attached topic. Ancestor listings cannot go stale: a
// topic never changes parent.
func (s *topicService) invalidateListings(ctx context.Context, ancestorIDs []int64) {
	s.invalidations.Add(1)
	for _, id := range ancestorIDs {
		sid := strconv.FormatInt(id, 10)
		if err := s.cache.DeletePrefix(ctx, "forum:descendants:"+sid+":"); err != nil {
			s.log.Warn("cache invalidate failed", "topic_id", id, "error", err)
		}
		if err := s.cache.Delete(ctx, "forum:children:"+sid); err != nil {
			s.log.Warn("cache invalidate failed", "topic_id", id, "error", err)
		}
		s.metrics.IncCache(cacheKindDescendants, "invalidate")
	}
}
