package web

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	commentsCtl "github.com/Laisky/laisky-notion-blog/internal/web/comments/controller"
	commentsDao "github.com/Laisky/laisky-notion-blog/internal/web/comments/dao"
	commentsSvc "github.com/Laisky/laisky-notion-blog/internal/web/comments/service"
	pagesCtl "github.com/Laisky/laisky-notion-blog/internal/web/pages/controller"
	pagesDao "github.com/Laisky/laisky-notion-blog/internal/web/pages/dao"
	"github.com/Laisky/laisky-notion-blog/internal/web/pages/render"
	pagesSvc "github.com/Laisky/laisky-notion-blog/internal/web/pages/service"
	"github.com/Laisky/laisky-notion-blog/library/cache"
	"github.com/Laisky/laisky-notion-blog/library/config"
	rdb "github.com/Laisky/laisky-notion-blog/library/db/redis"
	"github.com/Laisky/laisky-notion-blog/library/db/sql/snapshot"
	"github.com/Laisky/laisky-notion-blog/library/log"
	"github.com/Laisky/laisky-notion-blog/library/notion"
	"github.com/Laisky/laisky-notion-blog/library/throttle"
)

const (
	// CacheBackendMemory keeps snapshots in process only
	CacheBackendMemory = "memory"
	// CacheBackendRedis shares snapshots through redis
	CacheBackendRedis = "redis"
	// CacheBackendSQL persists snapshots in sqlite
	CacheBackendSQL = "sql"
)

// infra holds the connections shared by the services
type infra struct {
	redis   *rdb.DB
	backend cache.Backend
	queue   commentsSvc.EventQueue
	closers []io.Closer
}

func (i *infra) Close() {
	for _, c := range i.closers {
		gutils.CloseWithLog(c, log.Logger)
	}
}

// NewNotionClientFromConfig builds the notion client configured under settings.notion
func NewNotionClientFromConfig() (*notion.Client, error) {
	return notion.New(gconfig.Shared.GetString("settings.notion.token"),
		notion.WithBaseURL(config.StringOr("settings.notion.api", "https://api.notion.com/v1")),
		notion.WithVersion(config.StringOr("settings.notion.version", "2022-06-28")),
		notion.WithTimeout(time.Duration(config.IntOr("settings.notion.timeout_ms", 20000))*time.Millisecond),
		notion.WithRateLimit(config.FloatOr("settings.notion.rate_per_sec", 3), config.IntOr("settings.notion.burst", 3)),
		notion.WithLogger(log.Logger.Named("notion")),
	)
}

// NewThrottleFromConfig builds the comment throttle configured under settings.comments.throttle
func NewThrottleFromConfig() (*throttle.CommentThrottle, error) {
	return throttle.NewCommentThrottle(&throttle.CommentThrottleCfg{
		EachPerMinute:  config.IntOr("settings.comments.throttle.per_minute", 5),
		EachBurst:      config.IntOr("settings.comments.throttle.burst", 3),
		TotalPerMinute: config.IntOr("settings.comments.throttle.total_per_minute", 60),
		TotalBurst:     config.IntOr("settings.comments.throttle.total_burst", 20),
		MaxClients:     config.IntOr("settings.comments.throttle.max_clients", 10000),
	})
}

func setupInfra(ctx context.Context) (*infra, error) {
	in := new(infra)
	needRedis := gconfig.Shared.GetBool("settings.comments.events.enabled")

	kind := config.StringOr("settings.cache.backend", CacheBackendMemory)
	switch kind {
	case CacheBackendMemory:
	case CacheBackendRedis:
		needRedis = true
	case CacheBackendSQL:
		db, err := sql.Open("sqlite3", config.StringOr("settings.cache.sql.dsn", "file:notion-blog-cache.db?cache=shared"))
		if err != nil {
			return nil, errors.Wrap(err, "open sql cache")
		}
		in.closers = append(in.closers, db)

		store, err := snapshot.New(ctx, db)
		if err != nil {
			in.Close()
			return nil, errors.Wrap(err, "new sql cache backend")
		}
		in.backend = store
	default:
		return nil, errors.Errorf("unknown cache backend %q", kind)
	}

	if needRedis {
		db, err := rdb.NewDBFromConfig(ctx)
		if err != nil {
			in.Close()
			return nil, errors.Wrap(err, "connect redis")
		}
		in.redis = db
		in.closers = append(in.closers, db)
	}

	if kind == CacheBackendRedis {
		backend, err := rdb.NewCacheBackend(in.redis)
		if err != nil {
			in.Close()
			return nil, errors.Wrap(err, "new redis cache backend")
		}
		in.backend = backend
	}
	if gconfig.Shared.GetBool("settings.comments.events.enabled") {
		in.queue = in.redis
	}

	log.Logger.Info("cache backend ready",
		zap.String("backend", kind),
		zap.Bool("comment_events", in.queue != nil))
	return in, nil
}

// Run wires every service and serves http on addr until ctx is done
func Run(ctx context.Context, addr string) error {
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	in, err := setupInfra(ctx)
	if err != nil {
		return errors.Wrap(err, "setup infra")
	}
	defer in.Close()

	api, err := NewNotionClientFromConfig()
	if err != nil {
		return errors.Wrap(err, "new notion client")
	}

	limiter, err := NewThrottleFromConfig()
	if err != nil {
		return errors.Wrap(err, "new comment throttle")
	}

	commentStore, err := commentsDao.New(api, log.Logger.Named("comments_dao"))
	if err != nil {
		return errors.Wrap(err, "new comments dao")
	}
	comments, err := commentsSvc.NewService(commentsSvc.Deps{
		Store:   commentStore,
		Backend: in.backend,
		Queue:   in.queue,
	}, commentsSvc.LoadSettingsFromConfig(), log.Logger.Named("comments_service"), time.Now)
	if err != nil {
		return errors.Wrap(err, "new comments service")
	}

	pageSettings := pagesSvc.LoadSettingsFromConfig()
	pageStore, err := pagesDao.New(api, pagesDao.Config{
		DatabaseID:   gconfig.Shared.GetString("settings.notion.database_id"),
		SlugProperty: config.StringOr("settings.notion.slug_property", "Slug"),
		MaxDepth:     pageSettings.MaxDepth,
	}, log.Logger.Named("pages_dao"))
	if err != nil {
		return errors.Wrap(err, "new pages dao")
	}
	pages, err := pagesSvc.NewService(pagesSvc.Deps{
		Store:    pageStore,
		Renderer: render.NewMarkdown(gconfig.Shared.GetBool("settings.pages.number_headings")),
		Comments: comments,
		Backend:  in.backend,
	}, pageSettings, log.Logger.Named("pages_service"), time.Now)
	if err != nil {
		return errors.Wrap(err, "new pages service")
	}

	sites := loadSiteConfigSet(log.Logger.Named("site_config"))
	pageCtl, err := pagesCtl.New(pages, comments, limiter, sites.pageSite)
	if err != nil {
		return errors.Wrap(err, "new pages controller")
	}

	engine := NewEngine(gconfig.Shared.GetStringSlice("settings.web.allowed_origins"),
		commentsCtl.New(comments, limiter),
		pageCtl,
	)

	return RunServer(ctx, addr, engine)
}
