package repos

import (
	"github.com/yungbote/forum-backend/internal/data/repos/forum"
	"github.com/yungbote/forum-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type TopicRepo = forum.TopicRepo
type TopicRelationRepo = forum.TopicRelationRepo

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return forum.NewTopicRepo(db, baseLog)
}
func NewTopicRelationRepo(db *gorm.DB, baseLog *logger.Logger) TopicRelationRepo {
	return forum.NewTopicRelationRepo(db, baseLog)
}
