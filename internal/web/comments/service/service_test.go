package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
)

const testPageID = "1a2b3c4d-0000-4000-8000-000000000001"

type fakeStore struct {
	mu        sync.Mutex
	records   []model.CommentRecord
	lists     int
	createErr error
}

func (f *fakeStore) ListComments(_ context.Context, _ string) (*model.CommentList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lists++
	return &model.CommentList{
		Results: append([]model.CommentRecord(nil), f.records...),
		Users:   map[string]model.UserReference{},
	}, nil
}

func (f *fakeStore) CreateComment(_ context.Context, _ string, content string) (*model.CommentRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	r := model.CommentRecord{ID: "c" + string(rune('0'+len(f.records))),
		RichText: []model.TextSegment{{PlainText: content}}}
	f.records = append(f.records, r)
	return &r, nil
}

type fakeQueue struct {
	events []*model.CommentEvent
	err    error
}

func (q *fakeQueue) PushCommentEvent(_ context.Context, evt *model.CommentEvent) error {
	q.events = append(q.events, evt)
	return q.err
}

func newTestService(t *testing.T, store *fakeStore, queue EventQueue) *Service {
	t.Helper()

	svc, err := NewService(Deps{Store: store, Queue: queue},
		Settings{CacheTTL: time.Hour, SubmitTimeout: time.Second}, nil,
		func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	require.NoError(t, err)
	return svc
}

// TestListIsCachedPerPage verifies repeated reads are served from cache.
func TestListIsCachedPerPage(t *testing.T) {
	t.Parallel()

	store := &fakeStore{records: []model.CommentRecord{{ID: "c0"}}}
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := svc.List(ctx, "1a2b3c4d000040008000000000000001")
		require.NoError(t, err)
		require.Len(t, list.Results, 1)
	}
	require.Equal(t, 1, store.lists)

	_, err := svc.List(ctx, "not-a-page")
	require.ErrorIs(t, err, model.ErrInvalidPageID)
}

// TestCreateRefreshesListAndQueuesEvent verifies a created comment is visible and queued.
func TestCreateRefreshesListAndQueuesEvent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	queue := &fakeQueue{err: errors.New("queue down")}
	svc := newTestService(t, store, queue)
	ctx := context.Background()

	views, err := svc.ViewModels(ctx, testPageID)
	require.NoError(t, err)
	require.Empty(t, views)

	record, err := svc.Create(ctx, testPageID, "  hello  ", "10.0.0.1")
	require.NoError(t, err, "queue errors are not returned")
	require.Equal(t, "hello", record.RichText[0].PlainText)

	views, err = svc.ViewModels(ctx, testPageID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "hello", views[0].Text)
	require.False(t, views[0].IsOwner)

	require.Len(t, queue.events, 1)
	require.Equal(t, testPageID, queue.events[0].PageID)
	require.Equal(t, "10.0.0.1", queue.events[0].ClientIP)
}

// TestCreateRejectsInvalidContent verifies validation errors and that nothing is stored.
func TestCreateRejectsInvalidContent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, testPageID, " \n\t ", "")
	require.ErrorIs(t, err, model.ErrEmptyContent)

	_, err = svc.Create(ctx, testPageID, "a\x00b", "")
	require.ErrorIs(t, err, model.ErrInvalidContent)

	_, err = svc.Create(ctx, testPageID, strings.Repeat("字", maxCommentContentLength+1), "")
	require.ErrorIs(t, err, model.ErrInvalidContent)

	_, err = svc.Create(ctx, "slug", "hi", "")
	require.ErrorIs(t, err, model.ErrInvalidPageID)

	require.Empty(t, store.records)
}

// TestCreatePropagatesStoreError verifies creation failures reach the caller.
func TestCreatePropagatesStoreError(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeStore{createErr: errors.New("notion down")}, nil)
	_, err := svc.Create(context.Background(), testPageID, "hi", "")
	require.ErrorContains(t, err, "notion down")
}
