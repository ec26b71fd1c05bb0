package dao

import (
	"context"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-notion-blog/internal/web/pages/model"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

const (
	testPageID = "1a2b3c4d-0000-4000-8000-000000000001"
	testDBID   = "9f8e7d6c-0000-4000-8000-000000000003"
)

type fakeNotion struct {
	queries  []notion.DatabaseQuery
	pages    []notion.Page
	page     *notion.Page
	pageErr  error
	children map[string][]notion.Block
	listed   []string
}

func (f *fakeNotion) QueryDatabase(_ context.Context, _ string, q notion.DatabaseQuery) ([]notion.Page, error) {
	f.queries = append(f.queries, q)
	return f.pages, nil
}

func (f *fakeNotion) RetrievePage(context.Context, string) (*notion.Page, error) {
	return f.page, f.pageErr
}

func (f *fakeNotion) ListBlockChildren(_ context.Context, id string) ([]notion.Block, error) {
	f.listed = append(f.listed, id)
	return append([]notion.Block(nil), f.children[id]...), nil
}

// TestResolvePageID verifies ids pass through and slugs are looked up.
func TestResolvePageID(t *testing.T) {
	t.Parallel()

	api := &fakeNotion{pages: []notion.Page{{ID: testPageID}}}
	d, err := New(api, Config{DatabaseID: testDBID}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	id, err := d.ResolvePageID(ctx, "1a2b3c4d000040008000000000000001")
	require.NoError(t, err)
	require.Equal(t, testPageID, id)
	require.Empty(t, api.queries)

	id, err = d.ResolvePageID(ctx, "Hello World")
	require.NoError(t, err)
	require.Equal(t, testPageID, id)
	require.Len(t, api.queries, 1)
	require.Equal(t, "Slug", api.queries[0].Filter.Property)
	require.Equal(t, "hello-world", api.queries[0].Filter.RichText.Equals)

	api.pages = nil
	_, err = d.ResolvePageID(ctx, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
}

// TestResolvePageIDWithoutDatabase verifies slugs do not resolve without a database.
func TestResolvePageIDWithoutDatabase(t *testing.T) {
	t.Parallel()

	d, err := New(&fakeNotion{}, Config{}, nil)
	require.NoError(t, err)

	_, err = d.ResolvePageID(context.Background(), "hello")
	require.ErrorIs(t, err, model.ErrNotFound)
}

// TestLoadDocumentRespectsMaxDepth verifies nested blocks are fetched down to the limit.
func TestLoadDocumentRespectsMaxDepth(t *testing.T) {
	t.Parallel()

	api := &fakeNotion{
		page: &notion.Page{ID: testPageID, Properties: map[string]notion.Property{
			"Name": {Type: "title", Title: []notion.RichText{{PlainText: "Post"}}},
		}},
		children: map[string][]notion.Block{
			testPageID: {{ID: "b1", Type: "toggle", HasChildren: true}, {ID: "b2", Type: "paragraph"}},
			"b1":       {{ID: "b11", Type: "toggle", HasChildren: true}},
			"b11":      {{ID: "b111", Type: "paragraph"}},
		},
	}
	d, err := New(api, Config{MaxDepth: 2}, nil)
	require.NoError(t, err)

	doc, err := d.LoadDocument(context.Background(), testPageID)
	require.NoError(t, err)
	require.Equal(t, "Post", doc.Title)
	require.Len(t, doc.Blocks, 2)
	require.Len(t, doc.Blocks[0].Children, 1)
	require.Empty(t, doc.Blocks[0].Children[0].Children)
	require.Equal(t, []string{testPageID, "b1"}, api.listed)
}

// TestLoadDocumentNotFound verifies missing and archived pages map to ErrNotFound.
func TestLoadDocumentNotFound(t *testing.T) {
	t.Parallel()

	d, err := New(&fakeNotion{pageErr: errors.Wrap(notion.ErrNotFound, "retrieve")}, Config{}, nil)
	require.NoError(t, err)
	_, err = d.LoadDocument(context.Background(), testPageID)
	require.ErrorIs(t, err, model.ErrNotFound)

	d, err = New(&fakeNotion{page: &notion.Page{ID: testPageID, Archived: true}}, Config{}, nil)
	require.NoError(t, err)
	_, err = d.LoadDocument(context.Background(), testPageID)
	require.ErrorIs(t, err, model.ErrNotFound)
}
