package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/forum-backend/internal/http"
	httpH "github.com/yungbote/forum-backend/internal/http/handlers"
	"github.com/yungbote/forum-backend/internal/observability"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Forum  *httpH.ForumHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Forum:  httpH.NewForumHandler(log, services.Topics),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) http.RouterConfig {
	return http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		ForumHandler:   handlers.Forum,
		HealthHandler:  handlers.Health,
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *http.Server {
	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	return http.NewServer(routerConfig(log, cfg, metrics, handlers))
}
