package thread

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-notion-blog/internal/web/comments/model"
)

type fakeSource struct {
	mu        sync.Mutex
	records   []model.CommentRecord
	users     map[string]model.UserReference
	lists     int32
	creates   []string
	createErr error
	// listErr is returned by every list call after the first listOK ones
	listErr error
	listOK  int32
	// gate blocks CreateComment until closed when set
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeSource) ListComments(_ context.Context, _ string) (*model.CommentList, error) {
	if n := atomic.AddInt32(&f.lists, 1); f.listErr != nil && n > f.listOK {
		return nil, f.listErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.CommentList{
		Results: append([]model.CommentRecord(nil), f.records...),
		Users:   f.users,
	}, nil
}

func (f *fakeSource) CreateComment(ctx context.Context, _ string, content string) (*model.CommentRecord, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, content)
	r := model.CommentRecord{ID: "new", CreatedBy: model.AuthorRef{ID: "bot"},
		RichText: []model.TextSegment{{PlainText: content}}}
	f.records = append(f.records, r)
	return &r, nil
}

func newTestThread(t *testing.T, src Source, opts ...Option) *Thread {
	t.Helper()

	th, err := New("page-1", src, opts...)
	require.NoError(t, err)
	return th
}

// TestSubmitWhitespaceIsNoop verifies blank drafts make no request and change nothing.
func TestSubmitWhitespaceIsNoop(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	th := newTestThread(t, src)
	th.SetDraft("  \n ")

	require.NoError(t, th.Submit(context.Background(), th.Draft()))
	require.Empty(t, src.creates)
	require.EqualValues(t, 0, atomic.LoadInt32(&src.lists))
	require.Equal(t, "  \n ", th.Draft())
	require.False(t, th.Loading())
}

// TestSubmitSuccessClearsDraftAndRefreshes verifies the full success path.
func TestSubmitSuccessClearsDraftAndRefreshes(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	th := newTestThread(t, src)
	ctx := context.Background()

	views, err := th.Comments(ctx)
	require.NoError(t, err)
	require.Empty(t, views)

	updates, cancel := th.Subscribe()
	t.Cleanup(cancel)

	th.SetDraft("  hello  ")
	done := make(chan error, 1)
	go func() { done <- th.Submit(ctx, th.Draft()) }()

	<-src.entered
	require.True(t, th.Loading(), "loading is set while the request runs")
	close(src.gate)
	require.NoError(t, <-done)

	require.False(t, th.Loading())
	require.Equal(t, "", th.Draft())
	require.Equal(t, []string{"hello"}, src.creates)
	require.EqualValues(t, 2, atomic.LoadInt32(&src.lists))

	select {
	case upd := <-updates:
		require.Len(t, upd.Value.Results, 1)
	case <-time.After(time.Second):
		t.Fatal("no update after submit")
	}

	current, ok := th.Current()
	require.True(t, ok)
	require.Len(t, current, 1)
	require.Equal(t, "hello", current[0].Text)
	require.Equal(t, model.GuestID, current[0].User.ID)
}

// TestSubmitFailureClearsLoading verifies errors propagate and loading is released.
func TestSubmitFailureClearsLoading(t *testing.T) {
	t.Parallel()

	createErr := errors.New("notion down")
	src := &fakeSource{createErr: createErr}
	th := newTestThread(t, src)
	th.SetDraft("hello")

	err := th.Submit(context.Background(), th.Draft())
	require.ErrorIs(t, err, createErr)
	require.False(t, th.Loading())
	require.Equal(t, "hello", th.Draft(), "draft is kept for a retry")
	require.EqualValues(t, 0, atomic.LoadInt32(&src.lists))
}

// TestSubmitRefreshFailureAfterCreate verifies a created comment clears the draft
// and the loading flag even when the refresh that follows fails.
func TestSubmitRefreshFailureAfterCreate(t *testing.T) {
	t.Parallel()

	src := &fakeSource{listErr: errors.New("list down"), listOK: 1}
	th := newTestThread(t, src)
	ctx := context.Background()

	views, err := th.Comments(ctx)
	require.NoError(t, err)
	require.Empty(t, views)

	th.SetDraft("hello")
	err = th.Submit(ctx, th.Draft())
	require.ErrorContains(t, err, "list down")

	require.Equal(t, []string{"hello"}, src.creates)
	require.Empty(t, th.Draft())
	require.False(t, th.Loading())

	// the earlier list stays in place
	views, ok := th.Current()
	require.True(t, ok)
	require.Empty(t, views)
}

// TestSubmitTimesOut verifies a request that never answers is cancelled and loading released.
func TestSubmitTimesOut(t *testing.T) {
	t.Parallel()

	src := &fakeSource{gate: make(chan struct{})}
	th := newTestThread(t, src, WithSubmitTimeout(20*time.Millisecond))

	err := th.Submit(context.Background(), "hello")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, th.Loading())
}

// TestSubmitRejectsConcurrent verifies a second submission is refused while one is in flight.
func TestSubmitRejectsConcurrent(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	th := newTestThread(t, src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- th.Submit(ctx, "first") }()
	<-src.entered

	require.ErrorIs(t, th.Submit(ctx, "second"), ErrSubmitInFlight)

	close(src.gate)
	require.NoError(t, <-done)
	require.Equal(t, []string{"first"}, src.creates)
}

// TestCommentsDeriveAtCallTime verifies resolved authors and ages follow the clock.
func TestCommentsDeriveAtCallTime(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var now atomic.Int64
	now.Store(createdAt.Add(time.Minute).UnixNano())

	src := &fakeSource{
		records: []model.CommentRecord{{ID: "c1", CreatedBy: model.AuthorRef{ID: "u1"},
			RichText: []model.TextSegment{{PlainText: "hi"}}, CreatedTime: createdAt}},
		users: map[string]model.UserReference{"u1": {ID: "u1", Name: "Alice"}},
	}
	th := newTestThread(t, src, WithClock(func() time.Time { return time.Unix(0, now.Load()).UTC() }),
		WithCacheTTL(time.Hour))

	_, ok := th.Current()
	require.False(t, ok)

	views, err := th.Comments(context.Background())
	require.NoError(t, err)
	require.True(t, views[0].IsOwner)
	require.Equal(t, "1 minute ago", views[0].CreatedAt)

	now.Store(createdAt.Add(3 * time.Hour).UnixNano())
	views, ok = th.Current()
	require.True(t, ok)
	require.Equal(t, "3 hours ago", views[0].CreatedAt)
	require.EqualValues(t, 1, atomic.LoadInt32(&src.lists))
}

// TestNewValidatesArguments verifies constructor checks.
func TestNewValidatesArguments(t *testing.T) {
	t.Parallel()

	_, err := New("", &fakeSource{})
	require.Error(t, err)

	_, err = New("p", nil)
	require.Error(t, err)

	_, err = New("p", &fakeSource{}, WithSubmitTimeout(0))
	require.Error(t, err)
}
