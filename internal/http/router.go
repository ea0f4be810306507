package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/forum-backend/internal/http/handlers"
	httpMW "github.com/yungbote/forum-backend/internal/http/middleware"
	"github.com/yungbote/forum-backend/internal/observability"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	ForumHandler  *httpH.ForumHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.Tracing(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck", "/readyz"))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Forum
		if cfg.ForumHandler != nil {
			api.POST("/forum", cfg.ForumHandler.CreateTopic)
			api.GET("/forum", cfg.ForumHandler.ListTopics)
			api.GET("/forum/:id", cfg.ForumHandler.GetTopic)
			api.GET("/forum/:id/ancestors", cfg.ForumHandler.ListAncestors)
			api.GET("/forum/:id/descendants", cfg.ForumHandler.ListDescendants)
			api.GET("/forum/:id/children", cfg.ForumHandler.ListChildren)
		}
	}

	return r
}
