package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/forum-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/forum-backend/internal/domain/aggregates"
	"github.com/yungbote/forum-backend/internal/observability"
	"github.com/yungbote/forum-backend/internal/platform/cache"
	"github.com/yungbote/forum-backend/internal/platform/logger"
	"github.com/yungbote/forum-backend/internal/services"
)

type Services struct {
	Hierarchy domainagg.HierarchyAggregate
	Topics    services.TopicService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, c cache.Cache, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	hierarchy := aggregates.NewHierarchyAggregate(aggregates.HierarchyAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:      db,
			Log:     log.With("aggregate", "HierarchyAggregate"),
			Runner:  aggregates.NewGormTxRunner(db),
			Hooks:   aggregates.NewObservabilityHooks(metrics),
			Timeout: cfg.AttachTimeout,
		},
		Topics:    reposet.Topic,
		Relations: reposet.TopicRelation,
	})
	return Services{
		Hierarchy: hierarchy,
		Topics: services.NewTopicService(
			db,
			log,
			reposet.Topic,
			reposet.TopicRelation,
			hierarchy,
			c,
			cfg.Cache.TTL,
			metrics,
		),
	}
}
