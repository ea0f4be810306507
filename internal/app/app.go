package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/forum-backend/internal/data/db"
	forumhttp "github.com/yungbote/forum-backend/internal/http"
	"github.com/yungbote/forum-backend/internal/observability"
	"github.com/yungbote/forum-backend/internal/platform/cache"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	server       *forumhttp.Server
	store        *db.Service
	cache        cache.Cache
	redis        goredis.UniversalClient
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New wires the whole process: logger, tracing, metrics, store, cache,
// repos, services and the router.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.OtelConfig())
	metrics := observability.Init(log, cfg.MetricsEnabled)

	store, err := db.Open(cfg.DBOptions(), log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := store.AutoMigrateAll(); err != nil {
			_ = store.Close()
			log.Sync()
			return nil, fmt.Errorf("db automigrate: %w", err)
		}
	}
	theDB := store.DB()
	metrics.RegisterDBStats(log, theDB, cfg.Database.Driver)

	c, rdb := wireCache(ctx, log, cfg)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, c, metrics)
	handlerset := wireHandlers(log, theDB, serviceset)
	server := wireServer(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       server.Engine,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		server:       server,
		store:        store,
		cache:        c,
		redis:        rdb,
		otelShutdown: otelShutdown,
	}, nil
}

// wireCache connects redis when configured. A failed connection degrades to
// the no-op cache; reads then always go to the database.
func wireCache(ctx context.Context, log *logger.Logger, cfg Config) (cache.Cache, goredis.UniversalClient) {
	if cfg.Cache.RedisAddr == "" {
		log.Info("Hierarchy cache disabled (REDIS_ADDR unset)")
		return cache.NewNoop(), nil
	}
	c, rdb, err := cache.NewRedis(ctx, log, cache.RedisOptions{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	if err != nil {
		log.Warn("Hierarchy cache unavailable, continuing without it", "error", err)
		return cache.NewNoop(), nil
	}
	log.Info("Hierarchy cache connected", "addr", cfg.Cache.RedisAddr)
	return c, rdb
}

// Start launches background collectors. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.Metrics.StartRedisCollector(ctx, a.Log, a.redis)
}

// Run serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.server.Run(ctx, ":"+a.Cfg.Port, a.Cfg.ShutdownGrace)
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.otelShutdown != nil {
		errs = append(errs, a.otelShutdown(context.Background()))
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
