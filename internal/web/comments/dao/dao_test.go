package dao

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-notion-blog/library/notion"
)

type fakeNotion struct {
	mu        sync.Mutex
	comments  []notion.Comment
	users     map[string]*notion.User
	lookups   []string
	listErr   error
	created   []string
	createErr error
}

func (f *fakeNotion) ListComments(_ context.Context, _ string) ([]notion.Comment, error) {
	return f.comments, f.listErr
}

func (f *fakeNotion) CreateComment(_ context.Context, pageID, content string) (*notion.Comment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.mu.Lock()
	f.created = append(f.created, content)
	f.mu.Unlock()
	return &notion.Comment{
		ID:       "new",
		Parent:   notion.Parent{PageID: pageID},
		RichText: []notion.RichText{{Text: &notion.TextContent{Content: content}}},
	}, nil
}

func (f *fakeNotion) RetrieveUser(_ context.Context, id string) (*notion.User, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, id)
	f.mu.Unlock()

	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.Wrap(notion.ErrNotFound, "retrieve user")
}

// TestListCommentsResolvesAuthors verifies order, dedup of lookups, and that bots and unknown users are left out.
func TestListCommentsResolvesAuthors(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	api := &fakeNotion{
		comments: []notion.Comment{
			{ID: "c1", CreatedBy: notion.PartialUser{ID: "u1"}, CreatedTime: createdAt,
				RichText: []notion.RichText{{PlainText: "hello"}}},
			{ID: "c2", CreatedBy: notion.PartialUser{ID: "bot"}},
			{ID: "c3", CreatedBy: notion.PartialUser{ID: "u1"}},
			{ID: "c4", CreatedBy: notion.PartialUser{ID: "ghost"}},
		},
		users: map[string]*notion.User{
			"u1":  {ID: "u1", Type: "person", Name: "Alice", AvatarURL: "/a.png"},
			"bot": {ID: "bot", Type: "bot", Name: "blog"},
		},
	}

	d, err := New(api, nil)
	require.NoError(t, err)

	list, err := d.ListComments(context.Background(), "page")
	require.NoError(t, err)

	ids := make([]string, 0, len(list.Results))
	for _, r := range list.Results {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"c1", "c2", "c3", "c4"}, ids)
	require.Equal(t, "hello", list.Results[0].RichText[0].PlainText)
	require.Equal(t, createdAt, list.Results[0].CreatedTime)

	require.Len(t, list.Users, 1)
	require.Equal(t, "Alice", list.Users["u1"].Name)
	require.Equal(t, "/a.png", list.Users["u1"].ProfilePhoto)
	require.ElementsMatch(t, []string{"bot", "ghost", "u1"}, api.lookups)
}

// TestListCommentsPropagatesListError verifies a failed comment listing is returned.
func TestListCommentsPropagatesListError(t *testing.T) {
	t.Parallel()

	d, err := New(&fakeNotion{listErr: errors.New("boom")}, nil)
	require.NoError(t, err)

	_, err = d.ListComments(context.Background(), "page")
	require.ErrorContains(t, err, "boom")
}

// TestCreateCommentEchoesText verifies the created record carries the submitted text.
func TestCreateCommentEchoesText(t *testing.T) {
	t.Parallel()

	api := &fakeNotion{}
	d, err := New(api, nil)
	require.NoError(t, err)

	record, err := d.CreateComment(context.Background(), "page", "hi there")
	require.NoError(t, err)
	require.Equal(t, "new", record.ID)
	require.Equal(t, "hi there", record.RichText[0].PlainText)
	require.Equal(t, []string{"hi there"}, api.created)
}

// TestNewRequiresAPI verifies the constructor rejects a nil client.
func TestNewRequiresAPI(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil)
	require.Error(t, err)
}
