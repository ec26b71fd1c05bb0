// Package service serves page comments: cached listing, view models and creation.
package service

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/library/cache"
	"github.com/Laisky/laisky-notion-blog/library/log"
)

// Clock returns the current time. Tests can replace it for determinism.
type Clock func() time.Time

// Store reads and writes the comments of a page
type Store interface {
	ListComments(ctx context.Context, pageID string) (*model.CommentList, error)
	CreateComment(ctx context.Context, pageID, content string) (*model.CommentRecord, error)
}

// EventQueue receives an event for every created comment
type EventQueue interface {
	PushCommentEvent(ctx context.Context, evt *model.CommentEvent) error
}

// Deps are the collaborators of the service, only Store is required
type Deps struct {
	Store Store
	// Backend shares cached comment lists between instances
	Backend cache.Backend
	Queue   EventQueue
}

// Service provides comment listing and creation.
type Service struct {
	store    Store
	queue    EventQueue
	cache    *cache.Cache[*model.CommentList]
	settings Settings
	logger   logSDK.Logger
	clock    Clock
}

// CacheKey is the cache identity of a page's comment list
func CacheKey(pageID string) string {
	return "/api/comments/" + pageID
}

// NewService constructs a Service
func NewService(deps Deps, settings Settings, logger logSDK.Logger, clock Clock) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("comment store is required")
	}
	if logger == nil {
		logger = log.Logger.Named("comments_service")
	}
	if clock == nil {
		clock = time.Now
	}

	s := &Service{
		store:    deps.Store,
		queue:    deps.Queue,
		settings: settings,
		logger:   logger,
		clock:    clock,
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
	if s.cache, err = cache.New("comments", s.fetch, opts...); err != nil {
		return nil, errors.Wrap(err, "new comments cache")
	}

	return s, nil
}

func (s *Service) fetch(ctx context.Context, key string) (*model.CommentList, error) {
	pageID := key[len(CacheKey("")):]
	return s.store.ListComments(ctx, pageID)
}

// List returns the comments of a page with their resolved authors
func (s *Service) List(ctx context.Context, pageID string) (*model.CommentList, error) {
	id, err := sanitizePageID(pageID)
	if err != nil {
		return nil, err
	}

	snap, err := s.cache.Load(ctx, CacheKey(id))
	if err != nil {
		return nil, errors.Wrapf(err, "load comments of %s", id)
	}

	return snap.Value, nil
}

// ViewModels returns the comments of a page ready for display, aged at the current time
func (s *Service) ViewModels(ctx context.Context, pageID string) ([]model.CommentViewModel, error) {
	list, err := s.List(ctx, pageID)
	if err != nil {
		return nil, err
	}

	return DeriveList(list, s.clock()), nil
}

// Create posts content as a new comment on the page.
//
// The page's cached list is refreshed afterwards so the comment shows up
// on the next read. clientIP is only recorded in the queued event.
func (s *Service) Create(ctx context.Context, pageID, content, clientIP string) (*model.CommentRecord, error) {
	id, err := sanitizePageID(pageID)
	if err != nil {
		submissionCounter().WithLabelValues("rejected").Inc()
		return nil, err
	}
	body, err := sanitizeCommentContent(content)
	if err != nil {
		submissionCounter().WithLabelValues("rejected").Inc()
		return nil, err
	}

	if s.settings.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.SubmitTimeout)
		defer cancel()
	}

	record, err := s.store.CreateComment(ctx, id, body)
	if err != nil {
		submissionCounter().WithLabelValues("failed").Inc()
		return nil, errors.Wrapf(err, "create comment on %s", id)
	}
	submissionCounter().WithLabelValues("created").Inc()

	if _, err = s.cache.Revalidate(ctx, CacheKey(id)); err != nil {
		s.logger.Warn("refresh comments after create",
			zap.String("page", id), zap.Error(err))
	}

	if s.queue != nil {
		evt := &model.CommentEvent{
			PageID:    id,
			CommentID: record.ID,
			Content:   body,
			ClientIP:  clientIP,
			CreatedAt: s.clock(),
		}
		if err = s.queue.PushCommentEvent(ctx, evt); err != nil {
			s.logger.Warn("push comment event",
				zap.String("page", id), zap.Error(err))
		}
	}

	s.logger.Info("comment created",
		zap.String("page", id),
		zap.String("comment", record.ID))
	return record, nil
}
