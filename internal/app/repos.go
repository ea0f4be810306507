package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/forum-backend/internal/data/repos"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

type Repos struct {
	Topic         repos.TopicRepo
	TopicRelation repos.TopicRelationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Topic:         repos.NewTopicRepo(db, log),
		TopicRelation: repos.NewTopicRelationRepo(db, log),
	}
}
