// Package thread is the comment thread of one page as seen by a client:
// the cached comment list, the draft being written and its submission.
package thread

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
	"github.com/Laisky/laisky-notion-blog/internal/web/comments/service"
	"github.com/Laisky/laisky-notion-blog/library/cache"
	"github.com/Laisky/laisky-notion-blog/library/log"
)

// Source lists and creates the comments of a page
type Source interface {
	ListComments(ctx context.Context, pageID string) (*model.CommentList, error)
	CreateComment(ctx context.Context, pageID, content string) (*model.CommentRecord, error)
}

// Update is delivered to subscribers whenever a new comment list is fetched
type Update = cache.Snapshot[*model.CommentList]

// Thread is the comment thread of one page.
//
// It is safe for concurrent use. Only one submission runs at a time,
// the loading flag is set for its whole duration.
type Thread struct {
	pageID string
	key    string
	source Source
	cache  *cache.Cache[*model.CommentList]

	submitTimeout time.Duration
	clock         func() time.Time
	logger        logSDK.Logger

	mu      sync.Mutex
	draft   string
	loading atomic.Bool
}

// New creates the thread of pageID backed by source
func New(pageID string, source Source, opts ...Option) (*Thread, error) {
	if strings.TrimSpace(pageID) == "" {
		return nil, errors.New("page id is required")
	}
	if source == nil {
		return nil, errors.New("comment source is required")
	}

	opt, err := applyOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "apply opts")
	}

	t := &Thread{
		pageID:        pageID,
		key:           service.CacheKey(pageID),
		source:        source,
		submitTimeout: opt.submitTimeout,
		clock:         opt.clock,
		logger:        opt.logger,
	}
	if t.logger == nil {
		t.logger = log.Logger.Named("comment_thread")
	}

	if t.cache, err = cache.New("thread", func(ctx context.Context, _ string) (*model.CommentList, error) {
		return t.source.ListComments(ctx, t.pageID)
	}, cache.WithTTL(opt.cacheTTL), cache.WithClock(opt.clock), cache.WithLogger(t.logger)); err != nil {
		return nil, errors.Wrap(err, "new comment cache")
	}

	return t, nil
}

// PageID returns the page the thread belongs to
func (t *Thread) PageID() string {
	return t.pageID
}

// SetDraft replaces the draft text
func (t *Thread) SetDraft(text string) {
	t.mu.Lock()
	t.draft = text
	t.mu.Unlock()
}

// Draft returns the draft text
func (t *Thread) Draft() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

// Loading reports whether a submission is in flight
func (t *Thread) Loading() bool {
	return t.loading.Load()
}

// Comments returns the view models of the thread, fetching the list when it is
// missing or stale. Ages are computed at the time of the call.
func (t *Thread) Comments(ctx context.Context) ([]model.CommentViewModel, error) {
	snap, err := t.cache.Load(ctx, t.key)
	if err != nil {
		return nil, errors.Wrap(err, "load comments")
	}

	return service.DeriveList(snap.Value, t.clock()), nil
}

// Current derives the view models of the list already fetched, without fetching.
// ok is false when nothing was fetched yet.
func (t *Thread) Current() (views []model.CommentViewModel, ok bool) {
	snap, ok := t.cache.Peek(t.key)
	if !ok {
		return nil, false
	}

	return service.DeriveList(snap.Value, t.clock()), true
}

// Refresh fetches the comment list again
func (t *Thread) Refresh(ctx context.Context) error {
	if _, err := t.cache.Revalidate(ctx, t.key); err != nil {
		return errors.Wrap(err, "refresh comments")
	}

	return nil
}

// Subscribe returns a channel receiving every newly fetched list and a func to stop
func (t *Thread) Subscribe() (<-chan Update, func()) {
	return t.cache.Subscribe(t.key)
}

// Submit posts content as a new comment.
//
// Content that is empty after trimming is ignored without error. While the
// request runs Loading reports true, whatever the outcome it is reset before
// Submit returns. On success the draft is cleared and the list refreshed.
// A failed request is returned as is and leaves the draft untouched.
func (t *Thread) Submit(ctx context.Context, content string) error {
	body := strings.TrimSpace(content)
	if body == "" {
		return nil
	}

	if !t.loading.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	defer t.loading.Store(false)

	ctx, cancel := context.WithTimeout(ctx, t.submitTimeout)
	defer cancel()

	if _, err := t.source.CreateComment(ctx, t.pageID, body); err != nil {
		return err
	}

	t.SetDraft("")
	if err := t.Refresh(ctx); err != nil {
		t.logger.Warn("refresh after submit", zap.String("page", t.pageID), zap.Error(err))
		return err
	}

	return nil
}
