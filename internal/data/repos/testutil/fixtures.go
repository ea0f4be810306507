package testutil

import (
	"context"
	"testing"
	"time"

	types "github.com/yungbote/forum-backend/internal/domain"
	"gorm.io/gorm"
)

// SeedTopic inserts a topic and its closure rows directly, bypassing the
// hierarchy aggregate. parentID 0 seeds a root.
func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, parentID int64) *types.Topic {
	tb.Helper()
	now := time.Now().UTC()
	topic := &types.Topic{Title: title, CreatedAt: now, UpdatedAt: now}
	if err := tx.WithContext(ctx).Create(topic).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	rows := []*types.TopicRelation{{ParentID: topic.ID, ChildID: topic.ID, Depth: 0, CreatedAt: now}}
	if parentID > 0 {
		var ancestors []*types.TopicRelation
		if err := tx.WithContext(ctx).Where("child_id = ?", parentID).Order("depth ASC").Find(&ancestors).Error; err != nil {
			tb.Fatalf("seed topic ancestors: %v", err)
		}
		for _, a := range ancestors {
			rows = append(rows, &types.TopicRelation{ParentID: a.ParentID, ChildID: topic.ID, Depth: a.Depth + 1, CreatedAt: now})
		}
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		tb.Fatalf("seed topic relations: %v", err)
	}
	return topic
}

// RelationsOf returns every closure row whose child is childID, depth ascending.
func RelationsOf(tb testing.TB, ctx context.Context, tx *gorm.DB, childID int64) []*types.TopicRelation {
	tb.Helper()
	var out []*types.TopicRelation
	if err := tx.WithContext(ctx).Where("child_id = ?", childID).Order("depth ASC").Find(&out).Error; err != nil {
		tb.Fatalf("load relations: %v", err)
	}
	return out
}

func CountRows(tb testing.TB, ctx context.Context, tx *gorm.DB, model interface{}) int64 {
	tb.Helper()
	var n int64
	if err := tx.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
		tb.Fatalf("count rows: %v", err)
	}
	return n
}

func PtrInt64(v int64) *int64 { return &v }
