// Package service assembles blog pages: the document, its rendered content
// and the comment section keyed by the same page id.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gosimple/slug"

	commentsModel "github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/internal/web/pages/model"
	"github.com/Laisky/laisky-notion-blog/internal/web/pages/render"
	"github.com/Laisky/laisky-notion-blog/library/cache"
	"github.com/Laisky/laisky-notion-blog/library/log"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

// Clock returns the current time. Tests can replace it for determinism.
type Clock func() time.Time

// Store loads documents
type Store interface {
	ResolvePageID(ctx context.Context, slugOrID string) (string, error)
	LoadDocument(ctx context.Context, pageID string) (*model.Document, error)
}

// Comments provides the comment section of a page
type Comments interface {
	ViewModels(ctx context.Context, pageID string) ([]commentsModel.CommentViewModel, error)
}

// Deps are the collaborators of the service
type Deps struct {
	Store    Store
	Renderer render.Renderer
	Comments Comments
	// Backend shares cached documents between instances
	Backend cache.Backend
}

// Service serves page details
type Service struct {
	store    Store
	renderer render.Renderer
	comments Comments
	cache    *cache.Cache[*model.Document]
	logger   logSDK.Logger
}

// NewService constructs a Service
func NewService(deps Deps, settings Settings, logger logSDK.Logger, clock Clock) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("page store is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if deps.Comments == nil {
		return nil, errors.New("comments service is required")
	}
	if logger == nil {
		logger = log.Logger.Named("pages_service")
	}
	if clock == nil {
		clock = time.Now
	}

	s := &Service{
		store:    deps.Store,
		renderer: deps.Renderer,
		comments: deps.Comments,
		logger:   logger,
	}

	opts := []cache.Option{
		cache.WithTTL(settings.CacheTTL),
		cache.WithClock(clock),
		cache.WithLogger(logger.Named("cache")),
	}
	if deps.Backend != nil {
		opts = append(opts, cache.WithBackend(deps.Backend))
	}

	var err error
	if s.cache, err = cache.New("pages", s.fetch, opts...); err != nil {
		return nil, errors.Wrap(err, "new pages cache")
	}

	return s, nil
}

// cacheKey maps the many spellings of one page to a single key
func cacheKey(slugOrID string) string {
	if id, err := notion.NormalizeID(slugOrID); err == nil {
		return id
	}

	return slug.Make(slugOrID)
}

// fetch caches a missing page as nil so unknown slugs do not hit the api every time
func (s *Service) fetch(ctx context.Context, key string) (*model.Document, error) {
	id, err := s.store.ResolvePageID(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "resolve %q", key)
	}

	doc, err := s.store.LoadDocument(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "load document %s", id)
	}

	return doc, nil
}

// Detail returns the document addressed by a slug or page id.
// An unknown page yields a nil document and no error.
func (s *Service) Detail(ctx context.Context, slugOrID string) (*model.Document, error) {
	key := cacheKey(strings.TrimSpace(slugOrID))
	if key == "" {
		return nil, nil
	}

	snap, err := s.cache.Load(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "load page %q", key)
	}

	return snap.Value, nil
}

// Refresh drops the cached copy of a page, the next Detail loads it again
func (s *Service) Refresh(ctx context.Context, slugOrID string) error {
	return s.cache.Invalidate(ctx, cacheKey(strings.TrimSpace(slugOrID)))
}

// Assemble builds everything the page template needs.
//
// A missing document yields a nil view and no error, the caller renders nothing.
// The renderer and the comment section receive the same page id.
// Failing to load comments leaves the section empty.
func (s *Service) Assemble(ctx context.Context, slugOrID string, site model.Site) (*model.PageView, error) {
	doc, err := s.Detail(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	content, err := s.renderer.Render(doc.ID, doc.Blocks)
	if err != nil {
		return nil, errors.Wrapf(err, "render page %s", doc.ID)
	}

	comments, err := s.comments.ViewModels(ctx, doc.ID)
	if err != nil {
		s.logger.Warn("load comments of page",
			zap.String("page", doc.ID), zap.Error(err))
		comments = []commentsModel.CommentViewModel{}
	}

	return &model.PageView{
		Site:     site,
		Document: doc,
		Content:  content,
		Comments: comments,
	}, nil
}
